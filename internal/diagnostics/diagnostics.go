package diagnostics

import (
	"errors"
	"fmt"
	"sort"

	"github.com/funvibe/rectype/internal/token"
)

type ErrorCode string

const (
	ErrT001 ErrorCode = "T001" // duplicate declaration
	ErrT002 ErrorCode = "T002" // class openness violation
	ErrT003 ErrorCode = "T003" // unresolved reference
	ErrT004 ErrorCode = "T004" // type mismatch
	ErrT005 ErrorCode = "T005" // unknown variable
	ErrT006 ErrorCode = "T006" // ambiguous or missing overload
	ErrT007 ErrorCode = "T007" // macro used with operand

	ErrS001 ErrorCode = "S001" // malformed source
)

var codeNames = map[ErrorCode]string{
	ErrT001: "DuplicateDeclaration",
	ErrT002: "ClassOpennessViolation",
	ErrT003: "UnresolvedReference",
	ErrT004: "TypeMismatch",
	ErrT005: "UnknownVariable",
	ErrT006: "AmbiguousOrMissingOverload",
	ErrT007: "MacroUsedWithOperand",
	ErrS001: "MalformedSource",
}

func (c ErrorCode) Name() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return string(c)
}

// DiagnosticError is a structured error tied to the syntax node that caused it.
type DiagnosticError struct {
	Code ErrorCode
	Pos  token.Position
	Msg  string
	// Name is the declaration or symbol the diagnostic is about, if any.
	Name string
}

func (e *DiagnosticError) Error() string {
	if e.Pos.IsValid() || e.Pos.File != "" {
		return fmt.Sprintf("%s: [%s] %s", e.Pos, e.Code, e.Msg)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Msg)
}

func NewError(code ErrorCode, pos token.Position, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Pos: pos, Msg: msg}
}

func NewDuplicateDeclaration(pos token.Position, name string) *DiagnosticError {
	return &DiagnosticError{Code: ErrT001, Pos: pos, Name: name,
		Msg: fmt.Sprintf("%s is already defined", name)}
}

func NewOpennessViolation(pos token.Position, name, reason string) *DiagnosticError {
	return &DiagnosticError{Code: ErrT002, Pos: pos, Name: name,
		Msg: fmt.Sprintf("class %s %s", name, reason)}
}

func NewUnresolvedReference(pos token.Position, name string) *DiagnosticError {
	return &DiagnosticError{Code: ErrT003, Pos: pos, Name: name,
		Msg: fmt.Sprintf("unable to resolve %s", name)}
}

// NewTypeMismatch takes already rendered type strings so that this package
// stays below the type system in the import graph.
func NewTypeMismatch(pos token.Position, expected, found string) *DiagnosticError {
	return &DiagnosticError{Code: ErrT004, Pos: pos,
		Msg: fmt.Sprintf("expected type %s, found %s", expected, found)}
}

func NewUnknownVariable(pos token.Position, name string) *DiagnosticError {
	return &DiagnosticError{Code: ErrT005, Pos: pos, Name: name,
		Msg: fmt.Sprintf("unknown variable %s", name)}
}

func NewAmbiguousOverload(pos token.Position, name string, candidates int) *DiagnosticError {
	msg := fmt.Sprintf("no applicable signature for %s", name)
	if candidates > 1 {
		msg = fmt.Sprintf("ambiguous call to %s (%d equally specific signatures)", name, candidates)
	}
	return &DiagnosticError{Code: ErrT006, Pos: pos, Name: name, Msg: msg}
}

func NewMacroUsedWithOperand(pos token.Position, name string) *DiagnosticError {
	return &DiagnosticError{Code: ErrT007, Pos: pos, Name: name,
		Msg: fmt.Sprintf("cannot use %s with an operand", name)}
}

// As extracts a DiagnosticError from err, if there is one in its chain.
func As(err error) (*DiagnosticError, bool) {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Set collects diagnostics, deduplicating on position, code and message.
type Set struct {
	byKey map[string]*DiagnosticError
}

func (s *Set) Add(err *DiagnosticError) {
	if err == nil {
		return
	}
	if s.byKey == nil {
		s.byKey = make(map[string]*DiagnosticError)
	}
	key := fmt.Sprintf("%s:%d:%d:%s:%s", err.Pos.File, err.Pos.Line, err.Pos.Column, err.Code, err.Msg)
	if _, dup := s.byKey[key]; dup {
		return
	}
	s.byKey[key] = err
}

func (s *Set) AddAll(errs []*DiagnosticError) {
	for _, err := range errs {
		s.Add(err)
	}
}

func (s *Set) Len() int { return len(s.byKey) }

// Sorted returns the collected diagnostics ordered by position, code and
// message.
func (s *Set) Sorted() []*DiagnosticError {
	result := make([]*DiagnosticError, 0, len(s.byKey))
	for _, err := range s.byKey {
		result = append(result, err)
	}
	Sort(result)
	return result
}

func Sort(errs []*DiagnosticError) {
	sort.SliceStable(errs, func(i, j int) bool {
		a, b := errs[i], errs[j]
		if a.Pos != b.Pos {
			return a.Pos.Before(b.Pos)
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Msg < b.Msg
	})
}
