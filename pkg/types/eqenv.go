package types

// AssocTypeDef is one instance-provided equation Assoc[Arg] = Ret. The
// variables of Arg and Ret are generic and freshened before each match.
type AssocTypeDef struct {
	Arg Type
	Ret Type
}

// EqualityEnv collects the associated-type equations per symbol. It is a
// multimap: reduction picks the instance whose argument pattern unifies,
// not one keyed by equality. Built once per compilation; read-only during
// inference.
type EqualityEnv map[AssocSym][]AssocTypeDef

// Add appends one equation.
func (ee EqualityEnv) Add(sym AssocSym, def AssocTypeDef) {
	ee[sym] = append(ee[sym], def)
}

// Defs returns the equations for sym.
func (ee EqualityEnv) Defs(sym AssocSym) []AssocTypeDef {
	return ee[sym]
}
