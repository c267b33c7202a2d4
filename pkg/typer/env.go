package typer

import (
	"github.com/pkg/errors"

	"github.com/skeinlang/skein/pkg/ast"
	"github.com/skeinlang/skein/pkg/types"
)

// TypeEnv scopes term variables to their schemes. Lambda and let
// bindings are monomorphic, so most entries are trivial schemes; the
// chain of parents mirrors lexical scope.
type TypeEnv struct {
	parent *TypeEnv
	vars   map[ast.VarSym]types.Scheme
}

// NewTypeEnv creates an empty top-level scope.
func NewTypeEnv() *TypeEnv {
	return &TypeEnv{vars: make(map[ast.VarSym]types.Scheme)}
}

// Extend opens a child scope.
func (e *TypeEnv) Extend() *TypeEnv {
	return &TypeEnv{parent: e, vars: make(map[ast.VarSym]types.Scheme)}
}

// Bind adds a binding to the current scope.
func (e *TypeEnv) Bind(sym ast.VarSym, sc types.Scheme) {
	e.vars[sym] = sc
}

// SchemeOf resolves sym through the scope chain.
func (e *TypeEnv) SchemeOf(sym ast.VarSym) (types.Scheme, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		if sc, ok := scope.vars[sym]; ok {
			return sc, true
		}
	}
	return types.Scheme{}, false
}

// SigInfo is the lookup record for one class signature.
type SigInfo struct {
	Class  types.ClassSym
	Param  types.Var
	Scheme types.Scheme
}

// OpInfo is the lookup record for one effect operation. Scheme is the
// operation's arrow; its latent effect includes the declaring effect.
type OpInfo struct {
	Eff    types.EffSym
	Scheme types.Scheme
}

// SymTable resolves references to declared symbols during inference. It
// is built once from the declarations and read-only afterwards, so the
// worker pool shares it without locking.
type SymTable struct {
	Defs    map[types.DefSym]types.Scheme
	Sigs    map[types.SigSym]SigInfo
	Ops     map[types.OpSym]OpInfo
	Cases   map[types.CaseSym]types.Scheme
	Effects map[types.EffSym]*ast.EffectDecl
	Enums   map[types.EnumSym]*ast.EnumDecl
}

// BuildSymTable collects the declared schemes of every def, signature,
// operation, and enum case. Duplicate symbols mean the resolver broke its
// contract, so they fail the whole run rather than a single definition.
func BuildSymTable(root *ast.Root) (*SymTable, error) {
	t := &SymTable{
		Defs:    make(map[types.DefSym]types.Scheme),
		Sigs:    make(map[types.SigSym]SigInfo),
		Ops:     make(map[types.OpSym]OpInfo),
		Cases:   make(map[types.CaseSym]types.Scheme),
		Effects: make(map[types.EffSym]*ast.EffectDecl),
		Enums:   make(map[types.EnumSym]*ast.EnumDecl),
	}

	for _, def := range root.Defs {
		if _, dup := t.Defs[def.Sym]; dup {
			return nil, errors.Errorf("duplicate definition %s", def.Sym)
		}
		t.Defs[def.Sym] = def.Spec.DeclaredScheme()
	}

	for _, class := range root.Classes {
		for _, sig := range class.Sigs {
			if _, dup := t.Sigs[sig.Sym]; dup {
				return nil, errors.Errorf("duplicate signature %s", sig.Sym)
			}
			t.Sigs[sig.Sym] = SigInfo{
				Class:  class.Sym,
				Param:  class.Param,
				Scheme: sigScheme(class, sig),
			}
		}
	}

	for _, eff := range root.Effects {
		if _, dup := t.Effects[eff.Sym]; dup {
			return nil, errors.Errorf("duplicate effect %s", eff.Sym)
		}
		t.Effects[eff.Sym] = eff
		for _, op := range eff.Ops {
			if _, dup := t.Ops[op.Sym]; dup {
				return nil, errors.Errorf("duplicate operation %s", op.Sym)
			}
			t.Ops[op.Sym] = OpInfo{Eff: eff.Sym, Scheme: opScheme(eff.Sym, op)}
		}
	}

	for _, enum := range root.Enums {
		if _, dup := t.Enums[enum.Sym]; dup {
			return nil, errors.Errorf("duplicate enum %s", enum.Sym)
		}
		t.Enums[enum.Sym] = enum
		enumTpe := enumType(enum)
		for _, c := range enum.Cases {
			if _, dup := t.Cases[c.Sym]; dup {
				return nil, errors.Errorf("duplicate case %s", c.Sym)
			}
			t.Cases[c.Sym] = types.Scheme{
				Quantifiers: enum.Params,
				Base:        types.MkArrow([]types.Type{c.Payload}, types.PureType, enumTpe),
			}
		}
	}

	return t, nil
}

// sigScheme is the scheme a signature reference instantiates: the
// declared spec plus the membership obligation on the class parameter.
func sigScheme(class *ast.ClassDecl, sig *ast.SigDecl) types.Scheme {
	sc := sig.Spec.DeclaredScheme()
	if !containsVar(sc.Quantifiers, class.Param) {
		sc.Quantifiers = append([]types.Var{class.Param}, sc.Quantifiers...)
	}
	sc.TConstrs = append([]types.ClassConstraint{{Class: class.Sym, Arg: class.Param}}, sc.TConstrs...)
	return sc
}

// opScheme is the arrow a do-expression instantiates. The latent effect
// always includes the declaring effect; performing an operation can never
// be hidden from the effect row.
func opScheme(eff types.EffSym, op *ast.OpDecl) types.Scheme {
	sc := op.Spec.DeclaredScheme()
	params := make([]types.Type, len(op.Spec.FParams))
	for i, p := range op.Spec.FParams {
		params[i] = p.Tpe
	}
	latent := types.MkUnion(types.MkEffect(eff), op.Spec.Eff)
	sc.Base = types.MkArrow(params, latent, op.Spec.RetTpe)
	return sc
}

// enumType applies the enum constructor to its declared parameters.
func enumType(enum *ast.EnumDecl) types.Type {
	kind := types.Star
	for range enum.Params {
		kind = types.KArrow{L: types.Star, R: kind}
	}
	args := make([]types.Type, len(enum.Params))
	for i, p := range enum.Params {
		args[i] = p
	}
	return types.MkEnum(enum.Sym, kind, args...)
}

func containsVar(vs []types.Var, v types.Var) bool {
	for _, q := range vs {
		if q.ID == v.ID {
			return true
		}
	}
	return false
}
