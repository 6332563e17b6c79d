package diagram

// Ket wraps s in Dirac ket notation, the conventional default label for an
// energy level named s.
func Ket(s string) string { return "|" + s + "⟩" }

// Bra wraps s in Dirac bra notation.
func Bra(s string) string { return "⟨" + s + "|" }
