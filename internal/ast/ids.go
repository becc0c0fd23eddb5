package ast

import (
	"strings"

	"github.com/funvibe/rectype/internal/token"
)

// ModuleID names a module, e.g. "lang.Int".
type ModuleID string

// NameID uniquely identifies a declared type or function across modules.
type NameID struct {
	Module ModuleID
	Name   string
}

func (n NameID) String() string {
	return string(n.Module) + ":" + n.Name
}

// ParseNameID splits "module:name". A name without a module qualifier is
// placed in def.
func ParseNameID(s string, def ModuleID) NameID {
	if i := strings.LastIndex(s, ":"); i > 0 {
		return NameID{Module: ModuleID(s[:i]), Name: s[i+1:]}
	}
	return NameID{Module: def, Name: s}
}

// Node is implemented by every syntax tree element.
type Node interface {
	Position() token.Position
}

// Base carries the location metadata attached by the front-end.
type Base struct {
	Pos token.Position
}

func (b Base) Position() token.Position { return b.Pos }
