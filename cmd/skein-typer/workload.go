package main

import (
	"fmt"
	"math/rand"

	"github.com/skeinlang/skein/pkg/ast"
	"github.com/skeinlang/skein/pkg/types"
)

// programBuilder mints the source locations and variable ids of a
// generated program.
type programBuilder struct {
	fresh *types.Fresh
	file  string
	line  int
	vars  int
}

func newBuilder(file string) *programBuilder {
	return &programBuilder{fresh: types.NewFresh(), file: file}
}

func (b *programBuilder) loc() ast.SourceLocation {
	b.line++
	return ast.Loc(b.file, b.line, 1)
}

func (b *programBuilder) varSym(name string) ast.VarSym {
	b.vars++
	return ast.VarSym{Name: name, ID: b.vars}
}

func (b *programBuilder) tvar(k types.Kind) types.Var {
	return b.fresh.FreshRigidVar(k)
}

const demoModule = "Demo"

var (
	consoleEff = types.IOSym
	printlnOp  = types.OpSym{Eff: types.IOSym, Name: "println"}
	askEff     = types.EffSym{Name: "Ask"}
	askOp      = types.OpSym{Eff: types.EffSym{Name: "Ask"}, Name: "ask"}
)

// ioDecl declares the println operation on the builtin IO effect.
func ioDecl(b *programBuilder) *ast.EffectDecl {
	return &ast.EffectDecl{
		Sym: consoleEff,
		Ops: []*ast.OpDecl{{
			Sym: printlnOp,
			Spec: ast.Spec{
				FParams: []ast.FParam{{Sym: b.varSym("s"), Tpe: types.StrType, Loc: b.loc()}},
				RetTpe:  types.UnitType,
				Eff:     types.PureType,
				Loc:     b.loc(),
			},
			Loc: b.loc(),
		}},
		Loc: b.loc(),
	}
}

// askDecl declares a one-operation control effect.
func askDecl(b *programBuilder) *ast.EffectDecl {
	return &ast.EffectDecl{
		Sym: askEff,
		Ops: []*ast.OpDecl{{
			Sym: askOp,
			Spec: ast.Spec{
				RetTpe: types.StrType,
				Eff:    types.PureType,
				Loc:    b.loc(),
			},
			Loc: b.loc(),
		}},
		Loc: b.loc(),
	}
}

// optionDecl declares enum Option[a] with None and Some cases.
func optionDecl(b *programBuilder) *ast.EnumDecl {
	optionSym := types.EnumSym{Module: demoModule, Name: "Option"}
	a := b.tvar(types.Star)
	return &ast.EnumDecl{
		Sym:    optionSym,
		Params: []types.Var{a},
		Cases: []ast.CaseDecl{
			{Sym: types.CaseSym{Enum: optionSym, Name: "None"}, Payload: types.UnitType, Loc: b.loc()},
			{Sym: types.CaseSym{Enum: optionSym, Name: "Some"}, Payload: a, Loc: b.loc()},
		},
		Loc: b.loc(),
	}
}

func optionOf(root *ast.Root, arg types.Type) types.Type {
	enum := root.Enums[0]
	kind := types.MkKindArrow([]types.Kind{types.Star}, types.Star)
	return types.MkEnum(enum.Sym, kind, arg)
}

// demoProgram builds the showcase program: polymorphism, effect rows,
// handlers, records, a class with an instance, and one deliberately
// broken definition so the demo shows a diagnostic and recovery.
func demoProgram() *ast.Root {
	b := newBuilder("demo.skein")
	root := &ast.Root{}

	root.Effects = []*ast.EffectDecl{ioDecl(b), askDecl(b)}
	root.Enums = []*ast.EnumDecl{optionDecl(b)}

	def := func(name string, spec ast.Spec, body ast.Expr) {
		spec.Loc = b.loc()
		root.Defs = append(root.Defs, &ast.Def{
			Sym:  types.DefSym{Module: demoModule, Name: name},
			Spec: spec,
			Body: body,
			Loc:  spec.Loc,
		})
	}

	// identity: forall a. a -> a
	{
		a := b.tvar(types.Star)
		x := b.varSym("x")
		def("identity",
			ast.Spec{
				Quantifiers: []types.Var{a},
				FParams:     []ast.FParam{{Sym: x, Tpe: a, Loc: b.loc()}},
				RetTpe:      a,
				Eff:         types.PureType,
			},
			&ast.VarExpr{Sym: x, Loc: b.loc()})
	}

	// compose: the latent effects of both functions union into the result
	{
		a, c, d := b.tvar(types.Star), b.tvar(types.Star), b.tvar(types.Star)
		ef1, ef2 := b.tvar(types.EffKind), b.tvar(types.EffKind)
		f, g, x := b.varSym("f"), b.varSym("g"), b.varSym("x")
		def("compose",
			ast.Spec{
				Quantifiers: []types.Var{a, c, d, ef1, ef2},
				FParams: []ast.FParam{
					{Sym: f, Tpe: types.MkArrow([]types.Type{c}, ef1, d), Loc: b.loc()},
					{Sym: g, Tpe: types.MkArrow([]types.Type{a}, ef2, c), Loc: b.loc()},
					{Sym: x, Tpe: a, Loc: b.loc()},
				},
				RetTpe: d,
				Eff:    types.MkUnion(ef1, ef2),
			},
			&ast.ApplyExpr{
				Fn: &ast.VarExpr{Sym: f, Loc: b.loc()},
				Args: []ast.Expr{&ast.ApplyExpr{
					Fn:   &ast.VarExpr{Sym: g, Loc: b.loc()},
					Args: []ast.Expr{&ast.VarExpr{Sym: x, Loc: b.loc()}},
					Loc:  b.loc(),
				}},
				Loc: b.loc(),
			})
	}

	// greet performs IO and says so
	{
		name := b.varSym("name")
		def("greet",
			ast.Spec{
				FParams: []ast.FParam{{Sym: name, Tpe: types.StrType, Loc: b.loc()}},
				RetTpe:  types.UnitType,
				Eff:     types.MkEffect(consoleEff),
			},
			&ast.DoExpr{Op: printlnOp, Args: []ast.Expr{&ast.VarExpr{Sym: name, Loc: b.loc()}}, Loc: b.loc()})
	}

	// shout performs IO but claims to be pure; the checker rejects it
	{
		name := b.varSym("name")
		def("shout",
			ast.Spec{
				FParams: []ast.FParam{{Sym: name, Tpe: types.StrType, Loc: b.loc()}},
				RetTpe:  types.UnitType,
				Eff:     types.PureType,
			},
			&ast.DoExpr{Op: printlnOp, Args: []ast.Expr{&ast.VarExpr{Sym: name, Loc: b.loc()}}, Loc: b.loc()})
	}

	// capture handles Ask, so the whole thing is pure
	def("capture",
		ast.Spec{RetTpe: types.StrType, Eff: types.PureType},
		&ast.TryWithExpr{
			Body:    &ast.DoExpr{Op: askOp, Loc: b.loc()},
			Handled: askEff,
			Rules: []ast.HandlerRule{{
				Op:   askOp,
				Body: &ast.CstExpr{Lit: ast.StrLit{V: "cached"}, Loc: b.loc()},
				Loc:  b.loc(),
			}},
			Loc: b.loc(),
		})

	// nameOf selects a field from any record that has it
	{
		row := b.tvar(types.RecordRow)
		p := b.varSym("p")
		recTpe := types.MkRecord(types.MkRecordRowExtend("name", types.StrType, row))
		def("nameOf",
			ast.Spec{
				Quantifiers: []types.Var{row},
				FParams:     []ast.FParam{{Sym: p, Tpe: recTpe, Loc: b.loc()}},
				RetTpe:      types.StrType,
				Eff:         types.PureType,
			},
			&ast.RecordSelectExpr{Rec: &ast.VarExpr{Sym: p, Loc: b.loc()}, Label: "name", Loc: b.loc()})
	}

	// class Eq with an Int32 instance, used by same
	eqClass := types.ClassSym{Module: demoModule, Name: "Eq"}
	eqSig := types.SigSym{Class: eqClass, Name: "eq"}
	{
		a := b.tvar(types.Star)
		x, y := b.varSym("x"), b.varSym("y")
		root.Classes = append(root.Classes, &ast.ClassDecl{
			Sym:   eqClass,
			Param: a,
			Sigs: []*ast.SigDecl{{
				Sym: eqSig,
				Spec: ast.Spec{
					FParams: []ast.FParam{
						{Sym: x, Tpe: a, Loc: b.loc()},
						{Sym: y, Tpe: a, Loc: b.loc()},
					},
					RetTpe: types.BoolType,
					Eff:    types.PureType,
				},
				Loc: b.loc(),
			}},
			Loc: b.loc(),
		})

		ix, iy := b.varSym("x"), b.varSym("y")
		root.Instances = append(root.Instances, &ast.InstanceDecl{
			Class: eqClass,
			Tpe:   types.Int32Type,
			Defs: []*ast.Def{{
				Sym: types.DefSym{Module: demoModule, Name: "eq"},
				Spec: ast.Spec{
					FParams: []ast.FParam{
						{Sym: ix, Tpe: types.Int32Type, Loc: b.loc()},
						{Sym: iy, Tpe: types.Int32Type, Loc: b.loc()},
					},
					RetTpe: types.BoolType,
					Eff:    types.PureType,
				},
				Body: &ast.CstExpr{Lit: ast.BoolLit{V: true}, Loc: b.loc()},
				Loc:  b.loc(),
			}},
			Loc: b.loc(),
		})
	}
	{
		x := b.varSym("x")
		def("same",
			ast.Spec{
				FParams: []ast.FParam{{Sym: x, Tpe: types.Int32Type, Loc: b.loc()}},
				RetTpe:  types.BoolType,
				Eff:     types.PureType,
			},
			&ast.ApplyExpr{
				Fn: &ast.SigRefExpr{Sym: eqSig, Loc: b.loc()},
				Args: []ast.Expr{
					&ast.VarExpr{Sym: x, Loc: b.loc()},
					&ast.VarExpr{Sym: x, Loc: b.loc()},
				},
				Loc: b.loc(),
			})
	}

	// some42 wraps a literal in the Option enum
	def("some42",
		ast.Spec{RetTpe: optionOf(root, types.Int32Type), Eff: types.PureType},
		&ast.TagExpr{
			Case:    types.CaseSym{Enum: root.Enums[0].Sym, Name: "Some"},
			Payload: &ast.CstExpr{Lit: ast.Int32Lit{V: 42}, Loc: b.loc()},
			Loc:     b.loc(),
		})

	// delay suspends a pure computation
	{
		x := b.varSym("x")
		def("delay",
			ast.Spec{
				FParams: []ast.FParam{{Sym: x, Tpe: types.StrType, Loc: b.loc()}},
				RetTpe:  types.MkLazy(types.StrType),
				Eff:     types.PureType,
			},
			&ast.LazyExpr{E: &ast.VarExpr{Sym: x, Loc: b.loc()}, Loc: b.loc()})
	}

	// twice applies a local lambda twice through a monomorphic let
	{
		x, f, y := b.varSym("x"), b.varSym("f"), b.varSym("y")
		def("twice",
			ast.Spec{
				FParams: []ast.FParam{{Sym: x, Tpe: types.Int32Type, Loc: b.loc()}},
				RetTpe:  types.Int32Type,
				Eff:     types.PureType,
			},
			&ast.LetExpr{
				Sym: f,
				Bound: &ast.LambdaExpr{
					Param: ast.FParam{Sym: y, Loc: b.loc()},
					Body:  &ast.VarExpr{Sym: y, Loc: b.loc()},
					Loc:   b.loc(),
				},
				Body: &ast.ApplyExpr{
					Fn: &ast.VarExpr{Sym: f, Loc: b.loc()},
					Args: []ast.Expr{&ast.ApplyExpr{
						Fn:   &ast.VarExpr{Sym: f, Loc: b.loc()},
						Args: []ast.Expr{&ast.VarExpr{Sym: x, Loc: b.loc()}},
						Loc:  b.loc(),
					}},
					Loc: b.loc(),
				},
				Loc: b.loc(),
			})
	}

	return root
}

// syntheticProgram generates count definitions cycling through templates
// that exercise different parts of the checker. The same seed always
// yields the same program.
func syntheticProgram(count int, seed int64) *ast.Root {
	b := newBuilder("stress.skein")
	rng := rand.New(rand.NewSource(seed))
	root := &ast.Root{
		Effects: []*ast.EffectDecl{ioDecl(b), askDecl(b)},
		Enums:   []*ast.EnumDecl{optionDecl(b)},
	}

	for i := 0; i < count; i++ {
		name := fmt.Sprintf("synth%d", i)
		sym := types.DefSym{Module: "Stress", Name: name}
		var spec ast.Spec
		var body ast.Expr

		switch i % 6 {
		case 0: // monomorphic conditional
			c, x, y := b.varSym("c"), b.varSym("x"), b.varSym("y")
			spec = ast.Spec{
				FParams: []ast.FParam{
					{Sym: c, Tpe: types.BoolType, Loc: b.loc()},
					{Sym: x, Tpe: types.Int64Type, Loc: b.loc()},
					{Sym: y, Tpe: types.Int64Type, Loc: b.loc()},
				},
				RetTpe: types.Int64Type,
				Eff:    types.PureType,
			}
			body = &ast.IfExpr{
				Cond: &ast.VarExpr{Sym: c, Loc: b.loc()},
				Then: &ast.VarExpr{Sym: x, Loc: b.loc()},
				Else: &ast.VarExpr{Sym: y, Loc: b.loc()},
				Loc:  b.loc(),
			}

		case 1: // polymorphic identity
			a := b.tvar(types.Star)
			x := b.varSym("x")
			spec = ast.Spec{
				Quantifiers: []types.Var{a},
				FParams:     []ast.FParam{{Sym: x, Tpe: a, Loc: b.loc()}},
				RetTpe:      a,
				Eff:         types.PureType,
			}
			body = &ast.VarExpr{Sym: x, Loc: b.loc()}

		case 2: // effectful print
			spec = ast.Spec{
				RetTpe: types.UnitType,
				Eff:    types.MkEffect(consoleEff),
			}
			lit := fmt.Sprintf("msg-%d", rng.Intn(1000))
			body = &ast.DoExpr{
				Op:   printlnOp,
				Args: []ast.Expr{&ast.CstExpr{Lit: ast.StrLit{V: lit}, Loc: b.loc()}},
				Loc:  b.loc(),
			}

		case 3: // row polymorphic record access
			row := b.tvar(types.RecordRow)
			p := b.varSym("p")
			recTpe := types.MkRecord(types.MkRecordRowExtend("value", types.Int32Type, row))
			spec = ast.Spec{
				Quantifiers: []types.Var{row},
				FParams:     []ast.FParam{{Sym: p, Tpe: recTpe, Loc: b.loc()}},
				RetTpe:      types.Int32Type,
				Eff:         types.PureType,
			}
			body = &ast.RecordSelectExpr{Rec: &ast.VarExpr{Sym: p, Loc: b.loc()}, Label: "value", Loc: b.loc()}

		case 4: // handled control effect collapses to pure
			spec = ast.Spec{RetTpe: types.StrType, Eff: types.PureType}
			lit := fmt.Sprintf("answer-%d", rng.Intn(1000))
			body = &ast.TryWithExpr{
				Body:    &ast.DoExpr{Op: askOp, Loc: b.loc()},
				Handled: askEff,
				Rules: []ast.HandlerRule{{
					Op:   askOp,
					Body: &ast.CstExpr{Lit: ast.StrLit{V: lit}, Loc: b.loc()},
					Loc:  b.loc(),
				}},
				Loc: b.loc(),
			}

		case 5: // enum construction
			spec = ast.Spec{RetTpe: optionOf(root, types.StrType), Eff: types.PureType}
			lit := fmt.Sprintf("payload-%d", rng.Intn(1000))
			body = &ast.TagExpr{
				Case:    types.CaseSym{Enum: root.Enums[0].Sym, Name: "Some"},
				Payload: &ast.CstExpr{Lit: ast.StrLit{V: lit}, Loc: b.loc()},
				Loc:     b.loc(),
			}
		}

		spec.Loc = b.loc()
		root.Defs = append(root.Defs, &ast.Def{Sym: sym, Spec: spec, Body: body, Loc: spec.Loc})
	}

	return root
}
