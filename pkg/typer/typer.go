// Package typer checks the definitions of a program against their
// declared signatures: Hindley-Milner inference extended with Boolean
// effect formulas, row polymorphic records, type classes, and associated
// types. Definitions are independent given the declared signatures, so
// they check in parallel; a definition that fails is replaced by a
// recovered stub and the run reports every diagnostic at once.
package typer

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/skeinlang/skein/pkg/ast"
	"github.com/skeinlang/skein/pkg/types"
	"github.com/skeinlang/skein/pkg/zhegalkin"
)

// Checker holds the shared read-only context of one program: symbol
// table, class and equality environments, the effect universe, and the
// formula cache. A Checker is safe for concurrent use.
type Checker struct {
	root  *ast.Root
	opts  Options
	fresh *types.Fresh
	table *SymTable
	cenv  types.ClassEnv
	eenv  types.EqualityEnv
	univ  *types.Universe
	cache *zhegalkin.Cache
}

// New validates the program's declarations and prepares a Checker.
func New(root *ast.Root, opts Options) (*Checker, error) {
	opts = opts.normalized()

	table, err := BuildSymTable(root)
	if err != nil {
		return nil, err
	}
	cenv, err := buildClassEnv(root)
	if err != nil {
		return nil, err
	}

	eenv := make(types.EqualityEnv)
	for _, inst := range root.Instances {
		for _, a := range inst.Assocs {
			eenv.Add(a.Sym, types.AssocTypeDef{Arg: a.Arg, Ret: a.Ret})
		}
	}

	syms := make([]types.EffSym, 0, len(root.Effects))
	for _, eff := range root.Effects {
		syms = append(syms, eff.Sym)
	}

	var cache *zhegalkin.Cache
	if !opts.NoCache {
		cache = zhegalkin.NewCache(opts.CacheSize)
	}

	// ids minted during checking must never collide with ids already
	// present in the input's declared types
	fresh := types.NewFresh()
	var maxID types.VarID
	ast.WalkTypes(root, func(t types.Type) {
		for id := range types.FreeVars(t) {
			if id > maxID {
				maxID = id
			}
		}
	})
	fresh.Reserve(maxID)

	return &Checker{
		root:  root,
		opts:  opts,
		fresh: fresh,
		table: table,
		cenv:  cenv,
		eenv:  eenv,
		univ:  types.NewUniverse(syms...),
		cache: cache,
	}, nil
}

func buildClassEnv(root *ast.Root) (types.ClassEnv, error) {
	ce := make(types.ClassEnv, len(root.Classes))
	for _, cl := range root.Classes {
		if _, dup := ce[cl.Sym]; dup {
			return nil, pkgerrors.Errorf("duplicate class %s", cl.Sym)
		}
		ce[cl.Sym] = &types.ClassContext{Super: cl.Super}
	}
	for _, inst := range root.Instances {
		ctx, ok := ce[inst.Class]
		if !ok {
			return nil, pkgerrors.Errorf("instance of unknown class %s", inst.Class)
		}
		ctx.Instances = append(ctx.Instances, types.Instance{Tpe: inst.Tpe, TConstrs: inst.TConstrs})
	}
	return ce, nil
}

// Table exposes the declared schemes, for tooling built on top of the
// checker.
func (c *Checker) Table() *SymTable { return c.table }

// Universe exposes the effect universe of the program.
func (c *Checker) Universe() *types.Universe { return c.univ }

// CheckAll checks every definition from scratch.
func (c *Checker) CheckAll(ctx context.Context) (*ast.TypedRoot, error) {
	return c.Check(ctx, Everything(), nil)
}

// Check checks the definitions the change set marks stale and reuses
// prev's results for the rest. The returned tree is complete even when
// diagnostics are reported: failed definitions appear as recovered stubs.
// Diagnostics come back as an *InferenceErrors; an internal fault aborts
// the run with no tree.
func (c *Checker) Check(ctx context.Context, changes ChangeSet, prev *ast.TypedRoot) (*ast.TypedRoot, error) {
	out := &ast.TypedRoot{
		Defs: make(map[types.DefSym]*ast.TypedDef, len(c.root.Defs)),
		Sigs: make(map[types.SigSym]*ast.TypedSig),
	}
	var mu sync.Mutex
	var diags []error

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.opts.Parallelism)

	reused := 0
	for _, def := range c.root.Defs {
		if !changes.stale(def.Sym, def.Loc, prev) {
			out.Defs[def.Sym] = prev.Defs[def.Sym]
			reused++
			continue
		}
		eg.Go(func() error {
			td, err := c.checkDefUnit(ctx, def)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if abortive(err) {
					return err
				}
				diags = append(diags, err)
			}
			out.Defs[def.Sym] = td
			return nil
		})
	}

	for _, class := range c.root.Classes {
		for _, sig := range class.Sigs {
			eg.Go(func() error {
				ts, err := c.checkSigUnit(ctx, class, sig)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if abortive(err) {
						return err
					}
					diags = append(diags, err)
				}
				out.Sigs[sig.Sym] = ts
				return nil
			})
		}
	}

	instances := make([]*ast.TypedInstance, len(c.root.Instances))
	for i, inst := range c.root.Instances {
		instances[i] = &ast.TypedInstance{Class: inst.Class, Tpe: inst.Tpe, Loc: inst.Loc}
		instDiags := c.auditInstance(inst)
		if len(instDiags) > 0 {
			mu.Lock()
			diags = append(diags, instDiags...)
			mu.Unlock()
		}
		for _, def := range inst.Defs {
			ti := instances[i]
			eg.Go(func() error {
				td, err := c.checkInstanceMember(ctx, inst, def)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if abortive(err) {
						return err
					}
					diags = append(diags, err)
				}
				if td != nil {
					ti.Defs = append(ti.Defs, td)
				}
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	for _, ti := range instances {
		sort.Slice(ti.Defs, func(i, j int) bool {
			return ti.Defs[i].Sym.Name < ti.Defs[j].Sym.Name
		})
	}
	out.Instances = instances

	slog.Debug("check finished",
		"defs", len(out.Defs),
		"reused", reused,
		"diagnostics", len(diags))

	if len(diags) > 0 {
		sortDiagnostics(diags)
		return out, &InferenceErrors{Errors: diags}
	}
	return out, nil
}

// checkDefUnit is the worker body for one top-level definition. Internal
// faults travel the panic channel and surface as errors distinct from
// diagnostics; any other panic is not ours to catch.
func (c *Checker) checkDefUnit(ctx context.Context, def *ast.Def) (td *ast.TypedDef, err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(types.InternalError)
			if !ok {
				panic(r)
			}
			td, err = nil, ie
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Debug("checking definition", "def", def.Sym.String())
	declared := c.table.Defs[def.Sym]
	body, purity, cerr := c.checkBody(def.Sym, def.Spec, def.Body, declared)
	if cerr != nil {
		stub, stubPurity := c.recoveredBody(def.Spec, def.Body.GetSourceLocation())
		return &ast.TypedDef{
			Sym:       def.Sym,
			Scheme:    declared,
			Body:      stub,
			Purity:    stubPurity,
			Recovered: true,
			Loc:       def.Loc,
		}, cerr
	}
	return &ast.TypedDef{
		Sym:    def.Sym,
		Scheme: declared,
		Body:   body,
		Purity: purity,
		Loc:    def.Loc,
	}, nil
}

// checkSigUnit publishes a signature's scheme and checks its default
// body, when it has one, against that scheme. The class membership
// obligation on the parameter is assumed, not proved.
func (c *Checker) checkSigUnit(ctx context.Context, class *ast.ClassDecl, sig *ast.SigDecl) (ts *ast.TypedSig, err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(types.InternalError)
			if !ok {
				panic(r)
			}
			ts, err = nil, ie
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	declared := c.table.Sigs[sig.Sym].Scheme
	out := &ast.TypedSig{Sym: sig.Sym, Scheme: declared, Loc: sig.Loc}
	if sig.Default == nil {
		return out, nil
	}

	slog.Debug("checking default implementation", "sig", sig.Sym.String())
	sym := sigDefSym(sig.Sym)
	body, _, cerr := c.checkBody(sym, sig.Spec, sig.Default, declared)
	if cerr != nil {
		stub, _ := c.recoveredBody(sig.Spec, sig.Default.GetSourceLocation())
		out.Body = stub
		out.Recovered = true
		return out, cerr
	}
	out.Body = body
	return out, nil
}

// checkInstanceMember checks one instance def: its declared scheme must
// be equivalent to the class signature specialized at the instance type,
// and its body must check against it with the instance's constraints
// assumed. A nil result with a nil error means the member had no matching
// signature; auditInstance already reported it.
func (c *Checker) checkInstanceMember(ctx context.Context, inst *ast.InstanceDecl, def *ast.Def) (td *ast.TypedDef, err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(types.InternalError)
			if !ok {
				panic(r)
			}
			td, err = nil, ie
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sigSym := types.SigSym{Class: inst.Class, Name: def.Sym.Name}
	info, ok := c.table.Sigs[sigSym]
	if !ok {
		return nil, nil
	}

	slog.Debug("checking instance member", "class", inst.Class.String(), "def", def.Sym.String())

	declared := def.Spec.DeclaredScheme()
	declared.TConstrs = append(append([]types.ClassConstraint{}, declared.TConstrs...), inst.TConstrs...)

	expected := instanceMemberScheme(info, inst)
	if err := c.schemesEquivalent(declared, expected); err != nil {
		mismatch := &SigMismatchError{
			Sig:      sigSym,
			Def:      def.Sym,
			Expected: expected,
			Declared: declared,
			Inner:    err,
		}
		stub, stubPurity := c.recoveredBody(def.Spec, def.Body.GetSourceLocation())
		return &ast.TypedDef{
			Sym: def.Sym, Scheme: declared, Body: stub,
			Purity: stubPurity, Recovered: true, Loc: def.Loc,
		}, NewInferError(mismatch, def.Sym, def)
	}

	body, purity, cerr := c.checkBody(def.Sym, def.Spec, def.Body, declared)
	if cerr != nil {
		stub, stubPurity := c.recoveredBody(def.Spec, def.Body.GetSourceLocation())
		return &ast.TypedDef{
			Sym: def.Sym, Scheme: declared, Body: stub,
			Purity: stubPurity, Recovered: true, Loc: def.Loc,
		}, cerr
	}
	return &ast.TypedDef{
		Sym: def.Sym, Scheme: declared, Body: body,
		Purity: purity, Loc: def.Loc,
	}, nil
}

// auditInstance reports the structural problems of an instance: class
// signatures left unimplemented without a default, and members that match
// no signature.
func (c *Checker) auditInstance(inst *ast.InstanceDecl) []error {
	var diags []error
	class, ok := findClass(c.root, inst.Class)
	if !ok {
		// buildClassEnv already rejected this
		return nil
	}

	implemented := make(map[string]struct{}, len(inst.Defs))
	for _, def := range inst.Defs {
		implemented[def.Sym.Name] = struct{}{}
		sigSym := types.SigSym{Class: inst.Class, Name: def.Sym.Name}
		if _, known := c.table.Sigs[sigSym]; !known {
			extra := &ExtraneousMemberError{Def: def.Sym, Class: inst.Class}
			diags = append(diags, NewInferError(extra, def.Sym, def))
		}
	}
	for _, sig := range class.Sigs {
		if _, ok := implemented[sig.Sym.Name]; ok {
			continue
		}
		if sig.Default != nil {
			continue
		}
		missing := &MissingImplementationError{Sig: sig.Sym, Class: inst.Class, Tpe: inst.Tpe}
		diags = append(diags, NewInferError(missing, sigDefSym(sig.Sym), inst))
	}
	return diags
}

// instanceMemberScheme specializes a signature's scheme at the instance
// type: the class parameter is substituted away, the instance's own
// variables and constraints take its place, and the class membership
// obligation is dropped because the instance is the thing providing it.
func instanceMemberScheme(info SigInfo, inst *ast.InstanceDecl) types.Scheme {
	s := types.Singleton(info.Param.ID, inst.Tpe)

	var quantifiers []types.Var
	for _, q := range info.Scheme.Quantifiers {
		if q.ID != info.Param.ID {
			quantifiers = append(quantifiers, q)
		}
	}
	quantifiers = append(quantifiers, types.FreeVars(inst.Tpe).Sorted()...)

	var tcs []types.ClassConstraint
	for _, tc := range info.Scheme.TConstrs {
		if tc.Class == info.Class {
			if v, isVar := tc.Arg.(types.Var); isVar && v.ID == info.Param.ID {
				continue
			}
		}
		tcs = append(tcs, tc)
	}
	tcs = append(s.ApplyClassConstraints(tcs), inst.TConstrs...)

	return types.Scheme{
		Quantifiers: quantifiers,
		TConstrs:    tcs,
		EConstrs:    s.ApplyEqualityConstraints(info.Scheme.EConstrs),
		Base:        s.Apply(info.Scheme.Base),
	}
}

// schemesEquivalent demands mutual subsumption.
func (c *Checker) schemesEquivalent(a, b types.Scheme) error {
	uni := c.newUnifier(types.NewRigidityEnv())
	if err := uni.CheckSubsumes(a, b); err != nil {
		return err
	}
	return uni.CheckSubsumes(b, a)
}

func sigDefSym(sig types.SigSym) types.DefSym {
	return types.DefSym{Module: sig.Class.Module, Name: sig.Class.Name + "." + sig.Name}
}

func findClass(root *ast.Root, sym types.ClassSym) (*ast.ClassDecl, bool) {
	for _, cl := range root.Classes {
		if cl.Sym == sym {
			return cl, true
		}
	}
	return nil, false
}

// abortive reports whether err must stop the whole run rather than be
// recorded as a diagnostic.
func abortive(err error) bool {
	var ie types.InternalError
	if errors.As(err, &ie) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
