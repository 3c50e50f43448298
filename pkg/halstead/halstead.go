// Package halstead computes Halstead software science metrics over Java syntax trees.
package halstead

import (
	"math"

	sitter "github.com/smacker/go-tree-sitter"
)

// Metrics represents Halstead software science metrics.
type Metrics struct {
	OperatorsUnique uint32  `json:"operators_unique"` // n1: distinct operators
	OperandsUnique  uint32  `json:"operands_unique"`  // n2: distinct operands
	OperatorsTotal  uint32  `json:"operators_total"`  // N1: total operators
	OperandsTotal   uint32  `json:"operands_total"`   // N2: total operands
	Vocabulary      uint32  `json:"vocabulary"`       // n = n1 + n2
	Length          uint32  `json:"length"`           // N = N1 + N2
	Volume          float64 `json:"volume"`           // V = N * log2(n)
	Difficulty      float64 `json:"difficulty"`       // D = (n1/2) * (N2/n2)
	Effort          float64 `json:"effort"`           // E = D * V
}

// NewMetrics creates Halstead metrics from base counts and calculates derived values.
func NewMetrics(operatorsUnique, operandsUnique, operatorsTotal, operandsTotal uint32) Metrics {
	m := Metrics{
		OperatorsUnique: operatorsUnique,
		OperandsUnique:  operandsUnique,
		OperatorsTotal:  operatorsTotal,
		OperandsTotal:   operandsTotal,
		Vocabulary:      operatorsUnique + operandsUnique,
		Length:          operatorsTotal + operandsTotal,
	}
	if m.Vocabulary > 0 {
		m.Volume = float64(m.Length) * math.Log2(float64(m.Vocabulary))
	}
	if m.OperandsUnique > 0 {
		m.Difficulty = (float64(m.OperatorsUnique) / 2.0) *
			(float64(m.OperandsTotal) / float64(m.OperandsUnique))
	}
	m.Effort = m.Volume * m.Difficulty
	return m
}

// Columns returns the metrics keyed by the column names of the halstead feature table.
func (m Metrics) Columns() map[string]float64 {
	return map[string]float64{
		"getTotalOperatorsCnt":    float64(m.OperatorsTotal),
		"getDistinctOperatorsCnt": float64(m.OperatorsUnique),
		"getTotalOparandsCnt":     float64(m.OperandsTotal),
		"getDistinctOperandsCnt":  float64(m.OperandsUnique),
		"getLength":               float64(m.Length),
		"getVocabulary":           float64(m.Vocabulary),
		"getVolume":               m.Volume,
		"getDifficulty":           m.Difficulty,
		"getEffort":               m.Effort,
	}
}

// Analyzer classifies the tokens of a syntax tree into operators and operands.
// An Analyzer is not safe for concurrent use.
type Analyzer struct {
	operators map[string]int
	operands  map[string]int
}

// NewAnalyzer creates a new Halstead analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		operators: make(map[string]int),
		operands:  make(map[string]int),
	}
}

// Reset clears the analyzer state for a new analysis.
func (h *Analyzer) Reset() {
	clear(h.operators)
	clear(h.operands)
}

// AnalyzeNode computes metrics over every token under node.
func (h *Analyzer) AnalyzeNode(node *sitter.Node, source []byte) Metrics {
	h.Reset()
	h.walkNode(node, source)

	var operatorsTotal, operandsTotal uint32
	for _, count := range h.operators {
		operatorsTotal += uint32(count)
	}
	for _, count := range h.operands {
		operandsTotal += uint32(count)
	}

	return NewMetrics(uint32(len(h.operators)), uint32(len(h.operands)), operatorsTotal, operandsTotal)
}

// walkNode visits leaf tokens only, so composite expressions are not counted twice.
func (h *Analyzer) walkNode(node *sitter.Node, source []byte) {
	if node == nil || commentNodes[node.Type()] {
		return
	}

	if node.ChildCount() == 0 {
		text := tokenText(node, source)
		if text == "" {
			return
		}
		switch {
		case isOperand(node):
			h.operands[text]++
		case !closingTokens[text]:
			h.operators[text]++
		}
		return
	}

	for i := range int(node.ChildCount()) {
		h.walkNode(node.Child(i), source)
	}
}

var commentNodes = map[string]bool{
	"comment":       true,
	"line_comment":  true,
	"block_comment": true,
}

// Paired delimiters count once, on the opening token.
var closingTokens = map[string]bool{
	")": true,
	"]": true,
	"}": true,
}

// Primitive type keywords are operands even though the grammar emits them as
// anonymous tokens.
var primitiveTypeParents = map[string]bool{
	"integral_type":       true,
	"floating_point_type": true,
}

func isOperand(node *sitter.Node) bool {
	if node.IsNamed() {
		return true
	}
	if p := node.Parent(); p != nil && primitiveTypeParents[p.Type()] {
		return true
	}
	return false
}

func tokenText(node *sitter.Node, source []byte) string {
	start, end := node.StartByte(), node.EndByte()
	if start >= end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
