package types

import (
	"fmt"
	"strings"
)

// Formatter renders types for diagnostics. Variable display names live in
// its side table, never on the nodes themselves: the first unnamed
// variable prints as a, the next as b, and so on. The solver neither
// reads nor writes this table.
type Formatter struct {
	names map[VarID]string
	next  int
}

// NewFormatter creates a formatter with an empty name table.
func NewFormatter() *Formatter {
	return &Formatter{names: make(map[VarID]string)}
}

// SetName pins the display name for a variable, e.g. the name the user
// wrote in a declaration.
func (f *Formatter) SetName(id VarID, name string) {
	f.names[id] = name
}

// NameVar returns the display name for v, minting the next letter on
// first sight.
func (f *Formatter) NameVar(v Var) string {
	if name, ok := f.names[v.ID]; ok {
		return name
	}
	const letters = "abcdefghijklmnopqrstuvwxyz"
	var name string
	if f.next < len(letters) {
		name = string(letters[f.next])
	} else {
		name = fmt.Sprintf("%c%d", letters[f.next%len(letters)], f.next/len(letters))
	}
	f.next++
	f.names[v.ID] = name
	return name
}

// FormatType renders t with stable variable names.
func (f *Formatter) FormatType(t Type) string {
	return f.format(t, false)
}

// FormatScheme renders a scheme, constraints included.
func (f *Formatter) FormatScheme(sc Scheme) string {
	var b strings.Builder
	if len(sc.Quantifiers) > 0 {
		b.WriteString("forall ")
		for i, q := range sc.Quantifiers {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(f.NameVar(q))
		}
		b.WriteString(". ")
	}
	var obligations []string
	for _, c := range sc.TConstrs {
		obligations = append(obligations, fmt.Sprintf("%s[%s]", c.Class, f.format(c.Arg, false)))
	}
	for _, c := range sc.EConstrs {
		obligations = append(obligations,
			fmt.Sprintf("%s[%s] ~ %s", c.Assoc, f.format(c.Arg, false), f.format(c.Result, false)))
	}
	if len(obligations) > 0 {
		b.WriteString(strings.Join(obligations, ", "))
		b.WriteString(" => ")
	}
	b.WriteString(f.format(sc.Base, false))
	return b.String()
}

// format renders one type; nested controls parenthesization of infix
// forms appearing inside other infix forms.
func (f *Formatter) format(t Type, nested bool) string {
	switch x := t.(type) {
	case Var:
		return f.NameVar(x)
	case Cst:
		return x.C.String()
	case *Alias:
		if len(x.Args) == 0 {
			return x.Sym.String()
		}
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = f.format(a, false)
		}
		return fmt.Sprintf("%s[%s]", x.Sym, strings.Join(args, ", "))
	case *AssocType:
		return fmt.Sprintf("%s[%s]", x.Sym, f.format(x.Arg, false))
	case *Apply:
		return f.formatApply(x, nested)
	default:
		ICE("unknown type node %T", t)
		return ""
	}
}

func (f *Formatter) formatApply(t *Apply, nested bool) string {
	head, args := SplitApply(t)
	cst, ok := head.(Cst)
	if !ok {
		// variable or associated type in head position
		return fmt.Sprintf("%s[%s]", f.format(t.Fn, false), f.format(t.Arg, false))
	}
	switch c := cst.C.(type) {
	case CtorArrow:
		if params, eff, ret, full := ArrowParts(t); full {
			return f.formatArrow(params, eff, ret, nested)
		}
	case CtorTuple:
		if len(args) == c.Arity {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = f.format(a, false)
			}
			return "(" + strings.Join(parts, ", ") + ")"
		}
	case CtorRecord:
		if len(args) == 1 {
			return f.formatRow(args[0], "{", "}", " = ")
		}
	case CtorSchema:
		if len(args) == 1 {
			return f.formatRow(args[0], "#{", "}", "")
		}
	case CtorRecordRowExtend, CtorSchemaRowExtend:
		// bare row outside its wrapper
		open, sep := "{", " = "
		if _, schema := c.(CtorSchemaRowExtend); schema {
			open, sep = "#{", ""
		}
		return f.formatRow(t, open, "}", sep)
	case CtorUnion:
		if len(args) == 2 {
			s := f.format(args[0], true) + " + " + f.format(args[1], true)
			if nested {
				return "(" + s + ")"
			}
			return s
		}
	case CtorIntersection:
		if len(args) == 2 {
			s := f.format(args[0], true) + " & " + f.format(args[1], true)
			if nested {
				return "(" + s + ")"
			}
			return s
		}
	case CtorComplement:
		if len(args) == 1 {
			return "~" + f.format(args[0], true)
		}
	case CtorEnum:
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = f.format(a, false)
		}
		if len(args) == 0 {
			return c.Sym.String()
		}
		return fmt.Sprintf("%s[%s]", c.Sym, strings.Join(parts, ", "))
	case CtorLazy:
		if len(args) == 1 {
			return fmt.Sprintf("Lazy[%s]", f.format(args[0], false))
		}
	case CtorRelation:
		if len(args) == 1 {
			return fmt.Sprintf("Relation(%s)", f.format(args[0], false))
		}
	case CtorLattice:
		if len(args) == 1 {
			return fmt.Sprintf("Lattice(%s)", f.format(args[0], false))
		}
	}
	// partial application or an exotic head
	return fmt.Sprintf("%s[%s]", f.format(t.Fn, false), f.format(t.Arg, false))
}

func (f *Formatter) formatArrow(params []Type, eff, ret Type, nested bool) string {
	var b strings.Builder
	switch len(params) {
	case 1:
		b.WriteString(f.format(params[0], true))
	default:
		parts := make([]string, len(params))
		for i, p := range params {
			parts[i] = f.format(p, false)
		}
		b.WriteString("(" + strings.Join(parts, ", ") + ")")
	}
	b.WriteString(" -> ")
	b.WriteString(f.format(ret, true))
	if !TypeEq(eff, PureType) {
		b.WriteString(" \\ ")
		b.WriteString(f.format(eff, true))
	}
	s := b.String()
	if nested {
		return "(" + s + ")"
	}
	return s
}

// formatRow renders a row-extension chain: { x = Int32, y = Bool | r }
// for records, #{ Edge(Int32, Int32) | r } for schemas.
func (f *Formatter) formatRow(row Type, open, close, sep string) string {
	var fields []string
	for {
		head, args := SplitApply(UnAlias(row))
		cst, ok := head.(Cst)
		if !ok {
			break
		}
		switch c := cst.C.(type) {
		case CtorRecordRowExtend:
			if len(args) != 2 {
				break
			}
			fields = append(fields, string(c.Label)+sep+f.format(args[0], false))
			row = args[1]
			continue
		case CtorSchemaRowExtend:
			if len(args) != 2 {
				break
			}
			fields = append(fields, string(c.Label)+f.formatPredicate(args[0]))
			row = args[1]
			continue
		case CtorRecordRowEmpty, CtorSchemaRowEmpty:
			return open + " " + strings.Join(fields, ", ") + " " + close
		}
		break
	}
	// open tail
	return open + " " + strings.Join(fields, ", ") + " | " + f.format(row, false) + " " + close
}

func (f *Formatter) formatPredicate(pred Type) string {
	head, args := SplitApply(UnAlias(pred))
	if cst, ok := head.(Cst); ok && len(args) == 1 {
		switch cst.C.(type) {
		case CtorRelation, CtorLattice:
			return "(" + f.format(args[0], false) + ")"
		}
	}
	return "(" + f.format(pred, false) + ")"
}
