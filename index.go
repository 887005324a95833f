// Package fasteval is a small, embeddable evaluator for a single-line
// algebraic expression mini-language over float64 values. Callers supply
// an expression string and a Namespace that resolves free names to
// numbers; the library parses the expression into an AST held in a
// reusable Slab, optionally compiles that AST into a linear instruction
// stream, and evaluates either form against the namespace.
package fasteval

// ExpressionIndex names a slot in a ParseSlab's expression list. It is only
// meaningful relative to the ParseSlab that minted it; a Slab.Clear
// invalidates every index issued before the clear.
type ExpressionIndex uint32

// ValueIndex names a slot in a ParseSlab's value list. Same scoping rules as
// ExpressionIndex.
type ValueIndex uint32

// InstructionIndex names a slot in a CompileSlab's instruction list. Same
// scoping rules as ExpressionIndex, but relative to the CompileSlab.
type InstructionIndex uint32

const invalidIndex = ^uint32(0)
