package types

// Symbols give stable identity to named program entities. All symbol
// types are small comparable values, usable as map keys.

// DefSym identifies a top-level definition.
type DefSym struct {
	Module string
	Name   string
}

func (s DefSym) String() string { return qualify(s.Module, s.Name) }

// ClassSym identifies a type class.
type ClassSym struct {
	Module string
	Name   string
}

func (s ClassSym) String() string { return qualify(s.Module, s.Name) }

// SigSym identifies a signature declared inside a class.
type SigSym struct {
	Class ClassSym
	Name  string
}

func (s SigSym) String() string { return s.Class.String() + "." + s.Name }

// AssocSym identifies an associated type declared inside a class.
type AssocSym struct {
	Class ClassSym
	Name  string
}

func (s AssocSym) String() string { return s.Class.String() + "." + s.Name }

// EffSym identifies a declared algebraic effect.
type EffSym struct {
	Module string
	Name   string
}

func (s EffSym) String() string { return qualify(s.Module, s.Name) }

// OpSym identifies an operation declared inside an effect.
type OpSym struct {
	Eff  EffSym
	Name string
}

func (s OpSym) String() string { return s.Eff.String() + "." + s.Name }

// EnumSym identifies an enum declaration.
type EnumSym struct {
	Module string
	Name   string
}

func (s EnumSym) String() string { return qualify(s.Module, s.Name) }

// CaseSym identifies one case of an enum.
type CaseSym struct {
	Enum EnumSym
	Name string
}

func (s CaseSym) String() string { return s.Enum.String() + "." + s.Name }

// AliasSym identifies a type alias declaration.
type AliasSym struct {
	Module string
	Name   string
}

func (s AliasSym) String() string { return qualify(s.Module, s.Name) }

// Label names a record or schema row field.
type Label string

func (l Label) String() string { return string(l) }

// IOSym is the builtin IO effect, present in every effect universe.
var IOSym = EffSym{Name: "IO"}

func qualify(module, name string) string {
	if module == "" {
		return name
	}
	return module + "." + name
}
