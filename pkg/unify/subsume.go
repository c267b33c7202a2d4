package unify

import (
	"github.com/skeinlang/skein/pkg/types"
)

// CheckSubsumes verifies that the inferred scheme is at least as general
// as the declared one: every instance of declared must be achievable from
// inferred. The declared scheme opens at its own quantifiers, which are
// marked rigid so the check can never specialize the caller's choice of
// type arguments; the inferred scheme opens flexibly and is unified
// against it. Obligations surviving the unification must be entailed by
// the declared assumptions together with the class and equality
// environments, not merely satisfiable.
func (u *Unifier) CheckSubsumes(inferred, declared types.Scheme) error {
	renv := u.Renv.Clone()
	for _, q := range declared.Quantifiers {
		renv.MarkRigid(q.ID)
	}
	prover := u.withRenv(renv)

	iTC, iEC, iBase := types.Instantiate(u.Fresh, inferred)

	s, residual, err := prover.Unify(iBase, declared.Base)
	if err != nil {
		return err
	}

	assumedTC := s.ApplyClassConstraints(declared.TConstrs)
	for _, c := range s.ApplyClassConstraints(iTC) {
		if err := prover.EntailClass(assumedTC, c); err != nil {
			return err
		}
	}

	assumedEC := s.ApplyEqualityConstraints(declared.EConstrs)
	obligations := append(s.ApplyEqualityConstraints(iEC), s.ApplyEqualityConstraints(residual)...)
	for _, e := range obligations {
		if err := prover.EntailEq(assumedEC, e); err != nil {
			return err
		}
	}
	return nil
}
