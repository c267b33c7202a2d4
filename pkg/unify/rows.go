package unify

import (
	"github.com/skeinlang/skein/pkg/types"
)

// rowHead splits a row extension into its head label, field type, and
// remainder row.
func rowHead(row types.Type) (types.Label, types.Type, types.Type, bool) {
	head, args := types.SplitApply(types.UnAlias(row))
	cst, ok := head.(types.Cst)
	if !ok || len(args) != 2 {
		return "", nil, nil, false
	}
	switch c := cst.C.(type) {
	case types.CtorRecordRowExtend:
		return c.Label, args[0], args[1], true
	case types.CtorSchemaRowExtend:
		return c.Label, args[0], args[1], true
	default:
		return "", nil, nil, false
	}
}

// mkExtendLike rebuilds a row extension of the same sort as template.
func mkExtendLike(template types.Type, label types.Label, field, rest types.Type) types.Type {
	if ctor, ok := types.HeadCtor(types.UnAlias(template)); ok {
		if _, schema := ctor.(types.CtorSchemaRowExtend); schema {
			return types.MkSchemaRowExtend(label, field, rest)
		}
	}
	return types.MkRecordRowExtend(label, field, rest)
}

// rowFieldKind is the kind of field a row of the given kind carries.
func rowFieldKind(rowKind types.Kind) types.Kind {
	if rowKind == types.SchemaRow {
		return types.Predicate
	}
	return types.Star
}

// unifyRows unifies two rows label by label. The head field of r2 is
// searched for anywhere in r1, so field order never matters; the search
// may extend an open tail with a fresh row variable, while a closed tail
// missing the label is a hard failure.
func (u *Unifier) unifyRows(r1, r2 types.Type) (types.Substitution, []types.EqualityConstraint, error) {
	if types.TypeEq(r1, r2) {
		return nil, nil, nil
	}
	label2, field2, rest2, ok := rowHead(r2)
	if !ok {
		label1, _, _, ok1 := rowHead(r1)
		if !ok1 {
			return nil, nil, MismatchError{Expected: r1, Actual: r2}
		}
		// r2 is a closed empty row lacking r1's head field
		return nil, nil, RowFieldMissingError{Label: label1, Row: r2}
	}

	field1, rest1, s0, err := u.rewriteRow(r1, label2, r1)
	if err != nil {
		return nil, nil, err
	}

	s1, ec1, err := u.unify(s0.Apply(field1), s0.Apply(field2))
	if err != nil {
		return nil, nil, err
	}
	s10 := s1.Compose(s0)

	s2, ec2, err := u.unify(s10.Apply(rest1), s10.Apply(rest2))
	if err != nil {
		return nil, nil, err
	}
	return s2.Compose(s10), append(ec1, ec2...), nil
}

// rewriteRow finds the field with the given label anywhere in row,
// returning its type and the row with that field removed. An open tail
// that lacks the label is extended in place with fresh field and tail
// variables; a rigid or closed tail fails with RowFieldMissing.
func (u *Unifier) rewriteRow(row types.Type, label types.Label, original types.Type) (types.Type, types.Type, types.Substitution, error) {
	if l, field, rest, ok := rowHead(row); ok {
		if l == label {
			return field, rest, nil, nil
		}
		found, rest2, s, err := u.rewriteRow(rest, label, original)
		if err != nil {
			return nil, nil, nil, err
		}
		return found, mkExtendLike(row, l, s.Apply(field), rest2), s, nil
	}
	if v, ok := row.(types.Var); ok {
		if u.rigid(v) {
			return nil, nil, nil, RowFieldMissingError{Label: label, Row: original}
		}
		fieldVar := u.Fresh.FreshVar(rowFieldKind(v.Kind()))
		tailVar := u.Fresh.FreshVar(v.Kind())
		var ext types.Type
		if v.Kind() == types.SchemaRow {
			ext = types.MkSchemaRowExtend(label, fieldVar, tailVar)
		} else {
			ext = types.MkRecordRowExtend(label, fieldVar, tailVar)
		}
		return fieldVar, tailVar, types.Singleton(v.ID, ext), nil
	}
	return nil, nil, nil, RowFieldMissingError{Label: label, Row: original}
}
