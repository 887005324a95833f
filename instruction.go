package fasteval

// instrKind discriminates the tagged union held by Instruction. Instruction
// is a distinct type from Value: it is the lowered, folded, interned form
// produced by Compile.
type instrKind int

const (
	iConst instrKind = iota
	iVar
	iUnsafeVar
	iNeg
	iNot
	iInv
	iAdd
	iMul
	iMod
	iExp
	iLT
	iLTE
	iEQ
	iNE
	iGTE
	iGT
	iAnd
	iOr
	iFunc     // unary builtin, 1 child via `a`; min/max/log/round have their own kinds
	iUserFunc // undeclared-name call
	iMin
	iMax
	iLog
	iRound
	iPrint
	iEval
)

// Instruction is one node of the compiled IR. Leaves are iConst, iVar, and
// iUnsafeVar; every other variant references earlier InstructionIndex
// slots in the same CompileSlab. Sub and Div never appear here: the
// compiler lowers them to Add-of-Neg and Mul-of-Inv respectively.
type Instruction struct {
	kind instrKind

	constant float64 // iConst

	name string   // iVar, iUnsafeVar, iUserFunc
	addr *float64 // iUnsafeVar

	a InstructionIndex // unary operand, or left operand of a binary op
	b InstructionIndex // right operand of a binary op

	fn builtinFunc // iFunc

	userArgs []InstructionIndex // iUserFunc

	printArgs []compiledPrintArg // iPrint

	evalBody InstructionIndex // iEval
	evalArgs []compiledKwArg  // iEval
}

type compiledPrintArg struct {
	isString bool
	str      string
	instr    InstructionIndex
}

type compiledKwArg struct {
	name  string
	instr InstructionIndex
}

func (k instrKind) hasIndexA() bool {
	switch k {
	case iNeg, iNot, iInv, iAdd, iMul, iMod, iExp, iLT, iLTE, iEQ, iNE, iGTE, iGT, iAnd, iOr, iMin, iMax, iLog, iRound:
		return true
	case iFunc:
		return true
	}
	return false
}
