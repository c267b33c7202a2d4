package types

// RigidityEnv marks variables owned by an enclosing scope as rigid.
// Unification may not bind a rigid variable to a concrete term; it can
// only leave it free or identify a flexible variable with it.
type RigidityEnv map[VarID]struct{}

// NewRigidityEnv builds an empty environment.
func NewRigidityEnv() RigidityEnv {
	return make(RigidityEnv)
}

// MarkRigid marks the variable with the given id as rigid.
func (re RigidityEnv) MarkRigid(id VarID) {
	re[id] = struct{}{}
}

// IsRigid reports whether v is rigid, either by its own flag or by this
// environment.
func (re RigidityEnv) IsRigid(v Var) bool {
	if v.Rigid {
		return true
	}
	_, ok := re[v.ID]
	return ok
}

// Clone copies the environment.
func (re RigidityEnv) Clone() RigidityEnv {
	out := make(RigidityEnv, len(re))
	for id := range re {
		out[id] = struct{}{}
	}
	return out
}

// MarkAll marks every variable in vs as rigid.
func (re RigidityEnv) MarkAll(vs VarSet) {
	for id := range vs {
		re[id] = struct{}{}
	}
}

// RigidityOf builds an environment marking exactly the variables of vs
// rigid. Used to protect one side's variables while matching patterns
// against it.
func RigidityOf(vs VarSet) RigidityEnv {
	re := make(RigidityEnv, len(vs))
	re.MarkAll(vs)
	return re
}
