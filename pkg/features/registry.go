package features

var registry = []Feature{
	{Name: ClassLabel, Type: Bugged, Column: "is_buggy", Description: "file changed by a defect fix"},
	{Name: MethodLabel, Type: BuggedMethods, Column: "is_method_buggy", Description: "method changed by a defect fix"},

	{Name: "ImperativeAbstraction", Type: DesigniteDesign, Column: "Imperative Abstraction", Description: "imperative abstraction smell"},
	{Name: "MultifacetedAbstraction", Type: DesigniteDesign, Column: "Multifaceted Abstraction", Description: "multifaceted abstraction smell"},
	{Name: "UnnecessaryAbstraction", Type: DesigniteDesign, Column: "Unnecessary Abstraction", Description: "unnecessary abstraction smell"},
	{Name: "UnutilizedAbstraction", Type: DesigniteDesign, Column: "Unutilized Abstraction", Description: "unutilized abstraction smell"},
	{Name: "DeficientEncapsulation", Type: DesigniteDesign, Column: "Deficient Encapsulation", Description: "deficient encapsulation smell"},
	{Name: "UnexploitedEncapsulation", Type: DesigniteDesign, Column: "Unexploited Encapsulation", Description: "unexploited encapsulation smell"},
	{Name: "BrokenModularization", Type: DesigniteDesign, Column: "Broken Modularization", Description: "broken modularization smell"},
	{Name: "Cyclic_DependentModularization", Type: DesigniteDesign, Column: "Cyclic - Dependent Modularization", Description: "cyclic - dependent modularization smell"},
	{Name: "InsufficientModularization", Type: DesigniteDesign, Column: "Insufficient Modularization", Description: "insufficient modularization smell"},
	{Name: "Hub_likeModularization", Type: DesigniteDesign, Column: "Hub - like Modularization", Description: "hub - like modularization smell"},
	{Name: "BrokenHierarchy", Type: DesigniteDesign, Column: "Broken Hierarchy", Description: "broken hierarchy smell"},
	{Name: "CyclicHierarchy", Type: DesigniteDesign, Column: "Cyclic Hierarchy", Description: "cyclic hierarchy smell"},
	{Name: "DeepHierarchy", Type: DesigniteDesign, Column: "Deep Hierarchy", Description: "deep hierarchy smell"},
	{Name: "MissingHierarchy", Type: DesigniteDesign, Column: "Missing Hierarchy", Description: "missing hierarchy smell"},
	{Name: "MultipathHierarchy", Type: DesigniteDesign, Column: "Multipath Hierarchy", Description: "multipath hierarchy smell"},
	{Name: "RebelliousHierarchy", Type: DesigniteDesign, Column: "Rebellious Hierarchy", Description: "rebellious hierarchy smell"},
	{Name: "WideHierarchy", Type: DesigniteDesign, Column: "Wide Hierarchy", Description: "wide hierarchy smell"},

	{Name: "AbstractFunctionCallFromConstructor", Type: DesigniteImplementation, Column: "Abstract Function Call From Constructor", Description: "abstract function call from constructor smell"},
	{Name: "ComplexConditional", Type: DesigniteImplementation, Column: "Complex Conditional", Description: "complex conditional smell"},
	{Name: "ComplexMethod", Type: DesigniteImplementation, Column: "Complex Method", Description: "complex method smell"},
	{Name: "EmptyCatchClause", Type: DesigniteImplementation, Column: "Empty catch clause", Description: "empty catch clause smell"},
	{Name: "LongIdentifier", Type: DesigniteImplementation, Column: "Long Identifier", Description: "long identifier smell"},
	{Name: "LongMethod_Designite", Type: DesigniteImplementation, Column: "Long Method", Description: "long method smell"},
	{Name: "LongParameterList_Designite", Type: DesigniteImplementation, Column: "Long Parameter List", Description: "long parameter list smell"},
	{Name: "LongStatement", Type: DesigniteImplementation, Column: "Long Statement", Description: "long statement smell"},
	{Name: "MagicNumber", Type: DesigniteImplementation, Column: "Magic Number", Description: "magic number smell"},
	{Name: "MissingDefault", Type: DesigniteImplementation, Column: "Missing default", Description: "missing default smell"},

	{Name: "GodClass", Type: DesigniteTypeOrganic, Column: "God Class", Description: "god class smell"},
	{Name: "ClassDataShouldBePrivate", Type: DesigniteTypeOrganic, Column: "Class Data Should Be Private", Description: "class data should be private smell"},
	{Name: "ComplexClass", Type: DesigniteTypeOrganic, Column: "Complex Class", Description: "complex class smell"},
	{Name: "LazyClass", Type: DesigniteTypeOrganic, Column: "Lazy Class", Description: "lazy class smell"},
	{Name: "RefusedBequest", Type: DesigniteTypeOrganic, Column: "Refused Bequest", Description: "refused bequest smell"},
	{Name: "SpaghettiCode", Type: DesigniteTypeOrganic, Column: "Spaghetti Code", Description: "spaghetti code smell"},
	{Name: "SpeculativeGenerality", Type: DesigniteTypeOrganic, Column: "Speculative Generality", Description: "speculative generality smell"},
	{Name: "DataClass", Type: DesigniteTypeOrganic, Column: "Data Class", Description: "data class smell"},
	{Name: "BrainClass", Type: DesigniteTypeOrganic, Column: "Brain Class", Description: "brain class smell"},
	{Name: "LargeClass", Type: DesigniteTypeOrganic, Column: "Large Class", Description: "large class smell"},
	{Name: "SwissArmyKnife", Type: DesigniteTypeOrganic, Column: "Swiss Army Knife", Description: "swiss army knife smell"},
	{Name: "AntiSingleton", Type: DesigniteTypeOrganic, Column: "Anti Singleton", Description: "anti singleton smell"},

	{Name: "FeatureEnvy", Type: DesigniteMethodOrganic, Column: "Feature Envy", Description: "feature envy smell"},
	{Name: "LongMethod_Organic", Type: DesigniteMethodOrganic, Column: "Long Method", Description: "long method smell"},
	{Name: "LongParameterList_Organic", Type: DesigniteMethodOrganic, Column: "Long Parameter List", Description: "long parameter list smell"},
	{Name: "MessageChain", Type: DesigniteMethodOrganic, Column: "Message Chain", Description: "message chain smell"},
	{Name: "DispersedCoupling", Type: DesigniteMethodOrganic, Column: "Dispersed Coupling", Description: "dispersed coupling smell"},
	{Name: "IntensiveCoupling", Type: DesigniteMethodOrganic, Column: "Intensive Coupling", Description: "intensive coupling smell"},
	{Name: "ShotgunSurgery", Type: DesigniteMethodOrganic, Column: "Shotgun Surgery", Description: "shotgun surgery smell"},
	{Name: "BrainMethod", Type: DesigniteMethodOrganic, Column: "Brain Method", Description: "brain method smell"},

	{Name: "NumberOfFields", Type: DesigniteTypeMetrics, Column: "NOF", Description: "number of fields"},
	{Name: "NumberOfPublicFields", Type: DesigniteTypeMetrics, Column: "NOPF", Description: "number of public fields"},
	{Name: "NumberOfMethods_Designite", Type: DesigniteTypeMetrics, Column: "NOM", Description: "number of methods"},
	{Name: "NumberOfPublicMethods_Designite", Type: DesigniteTypeMetrics, Column: "NOPM", Description: "number of public methods"},
	{Name: "LOCClass", Type: DesigniteTypeMetrics, Column: "LOC", Description: "lines of code"},
	{Name: "WMC_Designite", Type: DesigniteTypeMetrics, Column: "WMC", Description: "weighted methods per class"},
	{Name: "NumberOfChildren", Type: DesigniteTypeMetrics, Column: "NC", Description: "number of children"},
	{Name: "DepthOfInheritance", Type: DesigniteTypeMetrics, Column: "DIT", Description: "depth of inheritance tree"},
	{Name: "LCOM", Type: DesigniteTypeMetrics, Column: "LCOM", Description: "lack of cohesion in methods"},
	{Name: "FANIN", Type: DesigniteTypeMetrics, Column: "FANIN", Description: "fan-in"},
	{Name: "FANOUT", Type: DesigniteTypeMetrics, Column: "FANOUT", Description: "fan-out"},

	{Name: "LOCMethod", Type: DesigniteMethodMetrics, Column: "LOC", Description: "lines of code"},
	{Name: "CyclomaticComplexity_Designite", Type: DesigniteMethodMetrics, Column: "CC", Description: "cyclomatic complexity"},
	{Name: "NumberOfParameters_Designite", Type: DesigniteMethodMetrics, Column: "PC", Description: "parameter count"},

	{Name: "NCSSForThisFile", Type: Checkstyle, Column: "NCSS_for_this_file", Description: "configured bound: ncss for this file"},
	{Name: "NestedIfElseDepth", Type: Checkstyle, Column: "Nested_if-else_depth", Description: "configured bound: nested if-else depth"},
	{Name: "BooleanExpressionComplexity", Type: Checkstyle, Column: "Boolean_expression_complexity", Description: "configured bound: boolean expression complexity"},
	{Name: "CyclomaticComplexity", Type: Checkstyle, Column: "Cyclomatic_Complexity", Description: "configured bound: cyclomatic complexity"},
	{Name: "NCSSForThisMethod", Type: Checkstyle, Column: "NCSS_for_this_method", Description: "configured bound: ncss for this method"},
	{Name: "NPathComplexity", Type: Checkstyle, Column: "NPath_Complexity", Description: "configured bound: npath complexity"},
	{Name: "ThrowsCount", Type: Checkstyle, Column: "Throws_count", Description: "configured bound: throws count"},
	{Name: "NCSSForThisClass", Type: Checkstyle, Column: "NCSS_for_this_class", Description: "configured bound: ncss for this class"},
	{Name: "NumberOfProtectedMethod", Type: Checkstyle, Column: "Number_of_protected_methods", Description: "configured bound: number of protected methods"},
	{Name: "NumberOfPackageMethod", Type: Checkstyle, Column: "Number_of_package_methods", Description: "configured bound: number of package methods"},
	{Name: "NumberOfPrivateMethod", Type: Checkstyle, Column: "Number_of_private_methods", Description: "configured bound: number of private methods"},
	{Name: "ExecutableStatementCount", Type: Checkstyle, Column: "Executable_statement_count", Description: "configured bound: executable statement count"},
	{Name: "MethodLength", Type: Checkstyle, Column: "Method_length", Description: "configured bound: method length"},
	{Name: "FileLength", Type: Checkstyle, Column: "File_length", Description: "configured bound: file length"},
	{Name: "AnonymousInnerClassLength", Type: Checkstyle, Column: "Anonymous_inner_class_length", Description: "configured bound: anonymous inner class length"},
	{Name: "NumberOfMethods_Checkstyle", Type: Checkstyle, Column: "Total_number_of_methods", Description: "configured bound: total number of methods"},
	{Name: "NumberOfPublicMethods_Checkstyle", Type: Checkstyle, Column: "Number_of_public_methods", Description: "configured bound: number of public methods"},
	{Name: "ClassFanOutComplexity", Type: Checkstyle, Column: "Class_Fan-Out_Complexity", Description: "configured bound: class fan-out complexity"},
	{Name: "NestedTryDepth", Type: Checkstyle, Column: "Nested_try_depth", Description: "configured bound: nested try depth"},
	{Name: "ClassDataAbstractionCoupling", Type: Checkstyle, Column: "Class_Data_Abstraction_Coupling", Description: "configured bound: class data abstraction coupling"},
	{Name: "NestedForDepth", Type: Checkstyle, Column: "Nested_for_depth", Description: "configured bound: nested for depth"},

	{Name: "IsConstructor", Type: CK, Column: "constructor", Description: "CK constructor"},
	{Name: "CBO", Type: CK, Column: "cbo", Description: "CK cbo"},
	{Name: "WMC_CK", Type: CK, Column: "wmc", Description: "CK wmc"},
	{Name: "RFC", Type: CK, Column: "rfc", Description: "CK rfc"},
	{Name: "LOC", Type: CK, Column: "loc", Description: "CK loc"},
	{Name: "Returns", Type: CK, Column: "returns", Description: "CK returns"},
	{Name: "NumberOfVariables", Type: CK, Column: "variables", Description: "CK variables"},
	{Name: "NumberOfParameters_CK", Type: CK, Column: "parameters", Description: "CK parameters"},
	{Name: "NumberOfLoops", Type: CK, Column: "loopQty", Description: "CK loopQty"},
	{Name: "NumberOfComparisons", Type: CK, Column: "comparisonsQty", Description: "CK comparisonsQty"},
	{Name: "NumberOfTryCatch", Type: CK, Column: "tryCatchQty", Description: "CK tryCatchQty"},
	{Name: "NumberOfParenthesizedExps", Type: CK, Column: "parenthesizedExpsQty", Description: "CK parenthesizedExpsQty"},
	{Name: "NumberOfStringLiterals", Type: CK, Column: "stringLiteralsQty", Description: "CK stringLiteralsQty"},
	{Name: "NumberOfNumbers", Type: CK, Column: "numbersQty", Description: "CK numbersQty"},
	{Name: "NumberOfAssignments", Type: CK, Column: "assignmentsQty", Description: "CK assignmentsQty"},
	{Name: "NumberOfMathOperations", Type: CK, Column: "mathOperationsQty", Description: "CK mathOperationsQty"},
	{Name: "MaxNumberOfNestedBlocks", Type: CK, Column: "maxNestedBlocks", Description: "CK maxNestedBlocks"},
	{Name: "NumberOfAnonymousClasses", Type: CK, Column: "anonymousClassesQty", Description: "CK anonymousClassesQty"},
	{Name: "NumberOfInnerClasses", Type: CK, Column: "innerClassesQty", Description: "CK innerClassesQty"},
	{Name: "NumberOfLambdas", Type: CK, Column: "lambdasQty", Description: "CK lambdasQty"},
	{Name: "NumberOfUniqueWords", Type: CK, Column: "uniqueWordsQty", Description: "CK uniqueWordsQty"},
	{Name: "NumberOfModifiers", Type: CK, Column: "modifiers", Description: "CK modifiers"},
	{Name: "NumberOfLogStatements", Type: CK, Column: "logStatementsQty", Description: "CK logStatementsQty"},

	{Name: "NumberOfAncestors", Type: Mood, Column: "numberOfAncestors", Description: "MOOD numberOfAncestors"},
	{Name: "NumberOfSubclasses", Type: Mood, Column: "numberOfSubclasses", Description: "MOOD numberOfSubclasses"},
	{Name: "NumberOfPrivateAttributes", Type: Mood, Column: "numbeOfPrivateAttributes", Description: "MOOD numbeOfPrivateAttributes"},
	{Name: "NumberOfProtectedAttributes", Type: Mood, Column: "numberOfProtectedAttributes", Description: "MOOD numberOfProtectedAttributes"},
	{Name: "NumberOfPublicAttributes", Type: Mood, Column: "numberOfPublicAttributes", Description: "MOOD numberOfPublicAttributes"},
	{Name: "NumberOfAttributes", Type: Mood, Column: "numberOfAttributes", Description: "MOOD numberOfAttributes"},
	{Name: "NumberOfCoupledClasses", Type: Mood, Column: "numberOfCoupledClasses", Description: "MOOD numberOfCoupledClasses"},
	{Name: "Cohesion", Type: Mood, Column: "cohesion", Description: "MOOD cohesion"},
	{Name: "NumberOfMethods_Mood", Type: Mood, Column: "numberOfMethods", Description: "MOOD numberOfMethods"},
	{Name: "NumberPublicMethods", Type: Mood, Column: "numberPublicMethods", Description: "MOOD numberPublicMethods"},
	{Name: "NumberUserDefinedAttributes", Type: Mood, Column: "numberUserDefinedAttributes", Description: "MOOD numberUserDefinedAttributes"},
	{Name: "NumberOfInheritedMethods", Type: Mood, Column: "numberOfInheritedMethods", Description: "MOOD numberOfInheritedMethods"},
	{Name: "NumberOfPolymorphicMethods", Type: Mood, Column: "numberOfPolymorphicMethods", Description: "MOOD numberOfPolymorphicMethods"},

	{Name: "TotalNumberOfOperators", Type: Halstead, Column: "getTotalOperatorsCnt", Description: "total operators (N1)"},
	{Name: "NumberOfDistinctOperators", Type: Halstead, Column: "getDistinctOperatorsCnt", Description: "distinct operators (n1)"},
	{Name: "TotalNumberOfOperands", Type: Halstead, Column: "getTotalOparandsCnt", Description: "total operands (N2)"},
	{Name: "NumberOfDistinctOperands", Type: Halstead, Column: "getDistinctOperandsCnt", Description: "distinct operands (n2)"},
	{Name: "Length", Type: Halstead, Column: "getLength", Description: "program length (N)"},
	{Name: "Vocabulary", Type: Halstead, Column: "getVocabulary", Description: "program vocabulary (n)"},
	{Name: "Volume", Type: Halstead, Column: "getVolume", Description: "program volume (V)"},
	{Name: "Difficulty", Type: Halstead, Column: "getDifficulty", Description: "program difficulty (D)"},
	{Name: "Effort", Type: Halstead, Column: "getEffort", Description: "programming effort (E)"},
}
