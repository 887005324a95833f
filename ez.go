package fasteval

// EzEval parses text, compiles it, and evaluates the compiled form against
// ns in one call. It allocates a fresh Slab for the expression and
// discards it afterward — a one-shot convenience. Callers evaluating the
// same expression repeatedly should allocate a Slab once and drive
// Parse/Compile/EvalCompiled (or Slab.Clear) directly instead.
func EzEval(text string, ns Namespace) (float64, error) {
	s := NewSlab()
	ei, err := Parse(&s.PS, text)
	if err != nil {
		return 0, err
	}
	ii := Compile(&s.PS, &s.CS, ei)
	return EvalCompiled(s, ii, ns)
}
