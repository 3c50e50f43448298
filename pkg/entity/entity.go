// Package entity defines the canonical identity shared by every feature source.
//
// An ID names a file, a class inside a file, or a method inside a class. The text
// form is "<file>", "<file>@<Class>" or "<file>@<Class>.<signature>". Nested types
// are joined with '$' so the class part never contains '.', which keeps the first
// '.' after '@' as the only class/method boundary.
package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Separators used by the text form.
const (
	MemberSep = "@"
	MethodSep = "."
	NestedSep = "$"
)

// ErrInvalidID is returned when text cannot be parsed as an ID.
var ErrInvalidID = errors.New("invalid entity id")

// Kind classifies an ID by its granularity.
type Kind int

const (
	KindFile Kind = iota
	KindClass
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	default:
		return "unknown"
	}
}

// ID is a structured canonical entity identifier. It is comparable and may be used
// directly as a map key.
type ID struct {
	File   string
	Class  string
	Method string
}

// File returns a file-level ID.
func File(path string) ID {
	return ID{File: path}
}

// Class returns a class-level ID.
func Class(path, class string) ID {
	return ID{File: path, Class: class}
}

// Method returns a method-level ID.
func Method(path, class, signature string) ID {
	return ID{File: path, Class: class, Method: signature}
}

// Kind reports whether the ID names a file, class or method.
func (id ID) Kind() Kind {
	switch {
	case id.Method != "":
		return KindMethod
	case id.Class != "":
		return KindClass
	default:
		return KindFile
	}
}

// IsZero reports whether the ID is empty.
func (id ID) IsZero() bool {
	return id == ID{}
}

// String renders the canonical text form.
func (id ID) String() string {
	switch id.Kind() {
	case KindMethod:
		return id.File + MemberSep + id.Class + MethodSep + id.Method
	case KindClass:
		return id.File + MemberSep + id.Class
	default:
		return id.File
	}
}

// OutermostClass returns the outermost named type, discarding nested and anonymous
// type qualifiers.
func (id ID) OutermostClass() string {
	class := id.Class
	// Apply the boundary rule until no nested marker is left.
	for {
		i := strings.Index(class, NestedSep)
		if i < 0 {
			return class
		}
		class = class[:i]
	}
}

// ClassID returns the ID of the outermost class enclosing this entity.
func (id ID) ClassID() ID {
	return ID{File: id.File, Class: id.OutermostClass()}
}

// FileID returns the ID of the file containing this entity.
func (id ID) FileID() ID {
	return ID{File: id.File}
}

// Less orders IDs by file, class, then method.
func (id ID) Less(other ID) bool {
	if id.File != other.File {
		return id.File < other.File
	}
	if id.Class != other.Class {
		return id.Class < other.Class
	}
	return id.Method < other.Method
}

// Parse parses the canonical text form.
func Parse(s string) (ID, error) {
	if s == "" {
		return ID{}, fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if strings.Count(s, MemberSep) > 1 {
		return ID{}, fmt.Errorf("%w: %q has more than one %q", ErrInvalidID, s, MemberSep)
	}

	file, member, ok := strings.Cut(s, MemberSep)
	if file == "" {
		return ID{}, fmt.Errorf("%w: %q has no file part", ErrInvalidID, s)
	}
	if !ok {
		return File(file), nil
	}
	if member == "" {
		return ID{}, fmt.Errorf("%w: %q has an empty member part", ErrInvalidID, s)
	}

	class, method, _ := strings.Cut(member, MethodSep)
	if class == "" {
		return ID{}, fmt.Errorf("%w: %q has no class", ErrInvalidID, s)
	}
	return ID{File: file, Class: class, Method: method}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}
