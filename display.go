package fasteval

import (
	"strconv"

	"github.com/dekarrin/rosed"
)

const defaultDumpWidth = 100

var valueKindNames = map[valueKind]string{
	valConstant:  "Constant",
	valVar:       "Var",
	valUnsafeVar: "UnsafeVar",
	valFunc:      "Func",
	valUserFunc:  "UserFunc",
	valPos:       "Pos",
	valNeg:       "Neg",
	valNot:       "Not",
	valParens:    "Parens",
	valPrint:     "Print",
	valEval:      "Eval",
}

var instrKindNames = map[instrKind]string{
	iConst:     "Const",
	iVar:       "Var",
	iUnsafeVar: "UnsafeVar",
	iNeg:       "Neg",
	iNot:       "Not",
	iInv:       "Inv",
	iAdd:       "Add",
	iMul:       "Mul",
	iMod:       "Mod",
	iExp:       "Exp",
	iLT:        "LT",
	iLTE:       "LTE",
	iEQ:        "EQ",
	iNE:        "NE",
	iGTE:       "GTE",
	iGT:        "GT",
	iAnd:       "And",
	iOr:        "Or",
	iFunc:      "Func",
	iUserFunc:  "UserFunc",
	iMin:       "Min",
	iMax:       "Max",
	iLog:       "Log",
	iRound:     "Round",
	iPrint:     "Print",
	iEval:      "Eval",
}

// Dump renders every Expression and Value currently held by the parse
// arena as a table, in ascending index order (children are pushed before
// their parents, so the root expression is the last row). Intended for debugging and
// REPL introspection, not for anything on a hot path.
func (ps *ParseSlab) Dump() string {
	exprRows := [][]string{{"#", "first", "pairs"}}
	for i, e := range ps.exprs {
		pairs := ""
		for _, p := range e.pairs {
			pairs += " " + p.op.String() + "->" + strconv.Itoa(int(p.val))
		}
		exprRows = append(exprRows, []string{strconv.Itoa(i), strconv.Itoa(int(e.first)), pairs})
	}

	valRows := [][]string{{"#", "kind", "detail"}}
	for i, v := range ps.vals {
		valRows = append(valRows, []string{strconv.Itoa(i), valueKindNames[v.kind], valueDetail(&v)})
	}

	out := rosed.Edit("Expressions:\n").
		InsertTableOpts(0, exprRows, defaultDumpWidth, rosed.Options{TableHeaders: true, NoTrailingLineSeparators: true}).
		Insert(0, "\n\nValues:\n")
	return out.InsertTableOpts(0, valRows, defaultDumpWidth, rosed.Options{TableHeaders: true, NoTrailingLineSeparators: true}).String()
}

func valueDetail(v *Value) string {
	switch v.kind {
	case valConstant:
		return strconv.FormatFloat(v.constant, 'g', -1, 64)
	case valVar, valUnsafeVar, valUserFunc:
		return v.name
	case valFunc:
		return v.fn.String()
	case valPos, valNeg, valNot:
		return "operand=" + strconv.Itoa(int(v.operand))
	case valParens:
		return "group=" + strconv.Itoa(int(v.group))
	case valPrint:
		return "argc=" + strconv.Itoa(len(v.printArgs))
	case valEval:
		return "kwargc=" + strconv.Itoa(len(v.evalArgs))
	}
	return ""
}

// Dump renders every Instruction currently held by the compile arena as a
// table, in ascending index order (the root instruction is the last row).
func (cs *CompileSlab) Dump() string {
	rows := [][]string{{"#", "kind", "detail"}}
	for i, instr := range cs.instrs {
		rows = append(rows, []string{strconv.Itoa(i), instrKindNames[instr.kind], instructionDetail(&instr)})
	}
	return rosed.Edit("Instructions:\n").
		InsertTableOpts(0, rows, defaultDumpWidth, rosed.Options{TableHeaders: true, NoTrailingLineSeparators: true}).
		String()
}

func instructionDetail(instr *Instruction) string {
	switch instr.kind {
	case iConst:
		return strconv.FormatFloat(instr.constant, 'g', -1, 64)
	case iVar, iUnsafeVar, iUserFunc:
		return instr.name
	case iFunc:
		return instr.fn.String() + " a=" + strconv.Itoa(int(instr.a))
	case iNeg, iNot, iInv:
		return "a=" + strconv.Itoa(int(instr.a))
	case iAdd, iMul, iMod, iExp, iLT, iLTE, iEQ, iNE, iGTE, iGT, iAnd, iOr, iMin, iMax, iLog, iRound:
		return "a=" + strconv.Itoa(int(instr.a)) + " b=" + strconv.Itoa(int(instr.b))
	case iPrint:
		return "argc=" + strconv.Itoa(len(instr.printArgs))
	case iEval:
		return "kwargc=" + strconv.Itoa(len(instr.evalArgs))
	}
	return ""
}

// FormatParseError renders a ParseError for a terminal or log line: the
// technical message followed by its breadcrumb context, word-wrapped to
// width.
func FormatParseError(err *ParseError, width int) string {
	msg := err.Error()
	for _, c := range err.Context() {
		msg += "\n  in " + c
	}
	return rosed.Edit(msg).Wrap(width).String()
}

// FormatEvalError renders an EvalError the same way FormatParseError does.
func FormatEvalError(err *EvalError, width int) string {
	msg := err.Error()
	for _, c := range err.Context() {
		msg += "\n  in " + c
	}
	return rosed.Edit(msg).Wrap(width).String()
}
