package weaver

// MaxInheritanceHops bounds every ancestry walk. Chains deeper than this,
// and cycles, are reported as "does not inherit".
const MaxInheritanceHops = 100

// TypeDef is the weaver's view of a named type.
type TypeDef interface {
	// FullName is "<import path>.<Name>".
	FullName() string
	// Bases returns the directly embedded named types. Metadata that cannot be
	// resolved is an error.
	Bases() ([]TypeDef, error)
}

// InheritsFrom reports whether t is, or embeds directly or through its bases,
// a type named fullName. The walk is depth first in declaration order. Each
// type visited, t included, costs one hop; the walk gives up after
// MaxInheritanceHops.
func InheritsFrom(t TypeDef, fullName string) (bool, error) {
	budget := MaxInheritanceHops
	return inheritsFrom(t, fullName, &budget)
}

func inheritsFrom(t TypeDef, fullName string, budget *int) (bool, error) {
	if *budget <= 0 {
		return false, nil
	}
	*budget--
	if t.FullName() == fullName {
		return true, nil
	}
	bases, err := t.Bases()
	if err != nil {
		return false, err
	}
	for _, b := range bases {
		ok, err := inheritsFrom(b, fullName, budget)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// embeds reports whether fullName is a direct base of t.
func embeds(t TypeDef, fullName string) (bool, error) {
	bases, err := t.Bases()
	if err != nil {
		return false, err
	}
	for _, b := range bases {
		if b.FullName() == fullName {
			return true, nil
		}
	}
	return false, nil
}
