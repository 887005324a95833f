package fasteval

import "math"

// exprSlice is a view over part of an Expression's flat pairs list: a head
// Value plus whichever (op, Value) pairs still belong to this segment after
// splitting off the pairs that matched some other operator. Compiling
// recurses by repeatedly finding the weakest operator present in a slice,
// splitting on it, and compiling each resulting segment.
type exprSlice struct {
	first ValueIndex
	pairs []exprPair
}

// binOpRank orders binary operators from weakest (lowest rank, split and
// thus evaluated last / outermost) to strongest (highest rank, innermost).
// Relational and equality operators are each a tied group: every member of
// a group shares its group's rank and is resolved together via splitMulti.
var binOpRank = map[BinaryOp]int{
	OpOR:  0,
	OpAND: 1,
	OpEQ:  2,
	OpNE:  2,
	OpLT:  3,
	OpGT:  3,
	OpLTE: 3,
	OpGTE: 3,
	OpAdd: 4,
	OpSub: 5,
	OpMul: 6,
	OpDiv: 7,
	OpMod: 8,
	OpExp: 9,
}

func splitOn(sl exprSlice, op BinaryOp) []exprSlice {
	out := []exprSlice{{first: sl.first}}
	for _, pr := range sl.pairs {
		if pr.op == op {
			out = append(out, exprSlice{first: pr.val})
		} else {
			cur := &out[len(out)-1]
			cur.pairs = append(cur.pairs, pr)
		}
	}
	return out
}

func splitMulti(sl exprSlice, ops []BinaryOp) ([]exprSlice, []BinaryOp) {
	matchesAny := func(op BinaryOp) bool {
		for _, o := range ops {
			if o == op {
				return true
			}
		}
		return false
	}
	out := []exprSlice{{first: sl.first}}
	var matched []BinaryOp
	for _, pr := range sl.pairs {
		if matchesAny(pr.op) {
			out = append(out, exprSlice{first: pr.val})
			matched = append(matched, pr.op)
		} else {
			cur := &out[len(out)-1]
			cur.pairs = append(cur.pairs, pr)
		}
	}
	return out, matched
}

// Compile lowers the Expression at ei into cs, folding constant
// subexpressions and fusing unary wrappers as it goes, and returns the
// index of the resulting root Instruction. Sub and Div never appear in the
// output: Sub lowers to Add-of-Neg, Div to Mul-of-Inv.
func Compile(ps *ParseSlab, cs *CompileSlab, ei ExpressionIndex) InstructionIndex {
	return cs.pushInstr(compileExpr(ps, cs, ei))
}

func compileExpr(ps *ParseSlab, cs *CompileSlab, ei ExpressionIndex) Instruction {
	e := ps.Expr(ei)
	return compileExprSlice(ps, cs, exprSlice{first: e.first, pairs: e.pairs})
}

func compileExprSlice(ps *ParseSlab, cs *CompileSlab, sl exprSlice) Instruction {
	if len(sl.pairs) == 0 {
		return compileValue(ps, cs, sl.first)
	}

	lowest := binOpRank[sl.pairs[0].op]
	for _, pr := range sl.pairs[1:] {
		if r := binOpRank[pr.op]; r < lowest {
			lowest = r
		}
	}

	switch lowest {
	case 0:
		return compileOr(ps, cs, sl)
	case 1:
		return compileAnd(ps, cs, sl)
	case 2:
		return compileEquality(ps, cs, sl)
	case 3:
		return compileComparisons(ps, cs, sl)
	case 4:
		return compilePlus(ps, cs, sl)
	case 5:
		return compileMinus(ps, cs, sl)
	case 6:
		return compileMulOp(ps, cs, sl)
	case 7:
		return compileDivOp(ps, cs, sl)
	case 8:
		return compileMod(ps, cs, sl)
	case 9:
		return compileExpOp(ps, cs, sl)
	}
	panic("fasteval: unreachable binary-op rank")
}

func compileOr(ps *ParseSlab, cs *CompileSlab, sl exprSlice) Instruction {
	segs := splitOn(sl, OpOR)
	out := Instruction{kind: iConst, constant: 0.0}
	outSet := false
	for _, seg := range segs {
		instr := compileExprSlice(ps, cs, seg)
		if outSet {
			out = Instruction{kind: iOr, a: cs.pushInstr(out), b: cs.pushInstr(instr)}
			continue
		}
		if instr.kind == iConst {
			if instr.constant != 0.0 {
				return instr
			}
			continue
		}
		out = instr
		outSet = true
	}
	return out
}

func compileAnd(ps *ParseSlab, cs *CompileSlab, sl exprSlice) Instruction {
	segs := splitOn(sl, OpAND)
	out := Instruction{kind: iConst, constant: 1.0}
	outSet := false
	for _, seg := range segs {
		instr := compileExprSlice(ps, cs, seg)
		if instr.kind == iConst && instr.constant == 0.0 {
			return instr
		}
		if outSet {
			if out.kind == iConst {
				out = instr
			} else {
				out = Instruction{kind: iAnd, a: cs.pushInstr(out), b: cs.pushInstr(instr)}
			}
		} else {
			out = instr
			outSet = true
		}
	}
	return out
}

func compileComparisons(ps *ParseSlab, cs *CompileSlab, sl exprSlice) Instruction {
	segs, ops := splitMulti(sl, []BinaryOp{OpLT, OpGT, OpLTE, OpGTE})
	out := compileExprSlice(ps, cs, segs[0])
	for i, op := range ops {
		instr := compileExprSlice(ps, cs, segs[i+1])
		if out.kind == iConst && instr.kind == iConst {
			l, r := out.constant, instr.constant
			var res bool
			switch op {
			case OpLT:
				res = l < r
			case OpGT:
				res = l > r
			case OpLTE:
				res = l <= r
			case OpGTE:
				res = l >= r
			}
			out = Instruction{kind: iConst, constant: boolToF64(res)}
			continue
		}
		var k instrKind
		switch op {
		case OpLT:
			k = iLT
		case OpGT:
			k = iGT
		case OpLTE:
			k = iLTE
		case OpGTE:
			k = iGTE
		}
		out = Instruction{kind: k, a: cs.pushInstr(out), b: cs.pushInstr(instr)}
	}
	return out
}

func compileEquality(ps *ParseSlab, cs *CompileSlab, sl exprSlice) Instruction {
	segs, ops := splitMulti(sl, []BinaryOp{OpEQ, OpNE})
	out := compileExprSlice(ps, cs, segs[0])
	for i, op := range ops {
		instr := compileExprSlice(ps, cs, segs[i+1])
		if out.kind == iConst && instr.kind == iConst {
			l, r := out.constant, instr.constant
			res := l == r
			if op == OpNE {
				res = l != r
			}
			out = Instruction{kind: iConst, constant: boolToF64(res)}
			continue
		}
		k := iEQ
		if op == OpNE {
			k = iNE
		}
		out = Instruction{kind: k, a: cs.pushInstr(out), b: cs.pushInstr(instr)}
	}
	return out
}

func compilePlus(ps *ParseSlab, cs *CompileSlab, sl exprSlice) Instruction {
	segs := splitOn(sl, OpAdd)
	out := Instruction{kind: iConst, constant: 0.0}
	outSet := false
	constSum := 0.0
	for _, seg := range segs {
		instr := compileExprSlice(ps, cs, seg)
		if instr.kind == iConst {
			constSum += instr.constant
		} else if outSet {
			out = Instruction{kind: iAdd, a: cs.pushInstr(out), b: cs.pushInstr(instr)}
		} else {
			out = instr
			outSet = true
		}
	}
	if constSum != 0.0 {
		if outSet {
			out = Instruction{kind: iAdd, a: cs.pushInstr(out), b: cs.pushInstr(Instruction{kind: iConst, constant: constSum})}
		} else {
			out = Instruction{kind: iConst, constant: constSum}
		}
	}
	return out
}

// compileMinus implements the reference compiler's is-first-term rule:
// the first operand contributes its constant value positively; every
// subsequent operand is negated before folding or emitting, so `3-3-3-3`
// collapses to a single Const(-6) and `3-x-3` becomes Add(Neg(x), Const(0))
// folded down to Neg(x).
func compileMinus(ps *ParseSlab, cs *CompileSlab, sl exprSlice) Instruction {
	segs := splitOn(sl, OpSub)
	out := Instruction{kind: iConst, constant: 0.0}
	outSet := false
	constSum := 0.0
	isFirst := true
	for _, seg := range segs {
		instr := compileExprSlice(ps, cs, seg)
		if instr.kind == iConst {
			if isFirst {
				constSum += instr.constant
			} else {
				constSum -= instr.constant
			}
		} else {
			if !isFirst {
				instr = negWrap(instr, cs)
			}
			if outSet {
				out = Instruction{kind: iAdd, a: cs.pushInstr(out), b: cs.pushInstr(instr)}
			} else {
				out = instr
				outSet = true
			}
		}
		isFirst = false
	}
	if constSum != 0.0 {
		if outSet {
			out = Instruction{kind: iAdd, a: cs.pushInstr(out), b: cs.pushInstr(Instruction{kind: iConst, constant: constSum})}
		} else {
			out = Instruction{kind: iConst, constant: constSum}
		}
	}
	return out
}

func compileMulOp(ps *ParseSlab, cs *CompileSlab, sl exprSlice) Instruction {
	segs := splitOn(sl, OpMul)
	instrs := make([]Instruction, len(segs))
	for i, seg := range segs {
		instrs[i] = compileExprSlice(ps, cs, seg)
	}
	return compileMulList(instrs, cs)
}

func compileDivOp(ps *ParseSlab, cs *CompileSlab, sl exprSlice) Instruction {
	segs := splitOn(sl, OpDiv)
	instrs := make([]Instruction, len(segs))
	for i, seg := range segs {
		instr := compileExprSlice(ps, cs, seg)
		if i == 0 {
			instrs[i] = instr
		} else {
			instrs[i] = invWrap(instr, cs)
		}
	}
	return compileMulList(instrs, cs)
}

func compileMod(ps *ParseSlab, cs *CompileSlab, sl exprSlice) Instruction {
	segs := splitOn(sl, OpMod)
	out := Instruction{kind: iConst, constant: 0.0}
	outSet := false
	for _, seg := range segs {
		instr := compileExprSlice(ps, cs, seg)
		if outSet {
			if out.kind == iConst && instr.kind == iConst {
				out = Instruction{kind: iConst, constant: math.Mod(out.constant, instr.constant)}
				continue
			}
			out = Instruction{kind: iMod, a: cs.pushInstr(out), b: cs.pushInstr(instr)}
		} else {
			out = instr
			outSet = true
		}
	}
	return out
}

// compileExpOp compiles a chain of `^` operands as right-associative:
// x^y^z compiles as Exp(x, Exp(y,z)), folding adjacent constant
// base/power pairs from the right. This deliberately departs from folding
// the whole right-hand run into one product exponent, since b^x^y does not
// equal b^(x*y) in general.
func compileExpOp(ps *ParseSlab, cs *CompileSlab, sl exprSlice) Instruction {
	segs := splitOn(sl, OpExp)
	instrs := make([]Instruction, len(segs))
	for i, seg := range segs {
		instrs[i] = compileExprSlice(ps, cs, seg)
	}
	result := instrs[len(instrs)-1]
	for i := len(instrs) - 2; i >= 0; i-- {
		result = combineExp(instrs[i], result, cs)
	}
	return result
}

func combineExp(base, power Instruction, cs *CompileSlab) Instruction {
	if base.kind == iConst && power.kind == iConst {
		return Instruction{kind: iConst, constant: math.Pow(base.constant, power.constant)}
	}
	return Instruction{kind: iExp, a: cs.pushInstr(base), b: cs.pushInstr(power)}
}

func compileMulList(instrs []Instruction, cs *CompileSlab) Instruction {
	out := Instruction{kind: iConst, constant: 1.0}
	outSet := false
	constProd := 1.0
	for _, instr := range instrs {
		if instr.kind == iConst {
			constProd *= instr.constant
		} else if outSet {
			out = Instruction{kind: iMul, a: cs.pushInstr(out), b: cs.pushInstr(instr)}
		} else {
			out = instr
			outSet = true
		}
	}
	if constProd != 1.0 {
		if outSet {
			out = Instruction{kind: iMul, a: cs.pushInstr(out), b: cs.pushInstr(Instruction{kind: iConst, constant: constProd})}
		} else {
			out = Instruction{kind: iConst, constant: constProd}
		}
	}
	return out
}

func negWrap(instr Instruction, cs *CompileSlab) Instruction {
	switch instr.kind {
	case iConst:
		return Instruction{kind: iConst, constant: -instr.constant}
	case iNeg:
		return cs.takeInstr(instr.a)
	default:
		return Instruction{kind: iNeg, a: cs.pushInstr(instr)}
	}
}

func notWrap(instr Instruction, cs *CompileSlab) Instruction {
	switch instr.kind {
	case iConst:
		return Instruction{kind: iConst, constant: boolToF64(instr.constant == 0.0)}
	case iNot:
		return cs.takeInstr(instr.a)
	default:
		return Instruction{kind: iNot, a: cs.pushInstr(instr)}
	}
}

func invWrap(instr Instruction, cs *CompileSlab) Instruction {
	switch instr.kind {
	case iConst:
		return Instruction{kind: iConst, constant: 1.0 / instr.constant}
	case iInv:
		return cs.takeInstr(instr.a)
	default:
		return Instruction{kind: iInv, a: cs.pushInstr(instr)}
	}
}

func compileValue(ps *ParseSlab, cs *CompileSlab, vi ValueIndex) Instruction {
	v := ps.Val(vi)
	switch v.kind {
	case valConstant:
		return Instruction{kind: iConst, constant: v.constant}
	case valVar:
		return Instruction{kind: iVar, name: v.name}
	case valUnsafeVar:
		return Instruction{kind: iUnsafeVar, name: v.name, addr: v.addr}
	case valPos:
		return compileValue(ps, cs, v.operand)
	case valNeg:
		return negWrap(compileValue(ps, cs, v.operand), cs)
	case valNot:
		return notWrap(compileValue(ps, cs, v.operand), cs)
	case valParens:
		return compileExpr(ps, cs, v.group)
	case valFunc:
		return compileBuiltinCall(ps, cs, v)
	case valUserFunc:
		return compileUserFuncCall(ps, cs, v)
	case valPrint:
		return compilePrint(ps, cs, v)
	case valEval:
		return compileEval(ps, cs, v)
	}
	panic("fasteval: unknown value kind")
}

func signum(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if math.Signbit(x) {
		return -1.0
	}
	return 1.0
}

func logBase(base, n float64) float64 {
	switch base {
	case 2.0:
		return math.Log2(n)
	case 10.0:
		return math.Log10(n)
	}
	return math.Log(n) / math.Log(base)
}

func applyTrig(fn builtinFunc, x float64) float64 {
	switch fn {
	case fnSin:
		return math.Sin(x)
	case fnCos:
		return math.Cos(x)
	case fnTan:
		return math.Tan(x)
	case fnAsin:
		return math.Asin(x)
	case fnAcos:
		return math.Acos(x)
	case fnAtan:
		return math.Atan(x)
	case fnSinh:
		return math.Sinh(x)
	case fnCosh:
		return math.Cosh(x)
	case fnTanh:
		return math.Tanh(x)
	case fnAsinh:
		return math.Asinh(x)
	case fnAcosh:
		return math.Acosh(x)
	case fnAtanh:
		return math.Atanh(x)
	}
	return math.NaN()
}

func compileBuiltinCall(ps *ParseSlab, cs *CompileSlab, v *Value) Instruction {
	switch v.fn {
	case fnInt:
		instr := compileExpr(ps, cs, v.args[0])
		if instr.kind == iConst {
			return Instruction{kind: iConst, constant: math.Trunc(instr.constant)}
		}
		return Instruction{kind: iFunc, fn: fnInt, a: cs.pushInstr(instr)}
	case fnCeil:
		instr := compileExpr(ps, cs, v.args[0])
		if instr.kind == iConst {
			return Instruction{kind: iConst, constant: math.Ceil(instr.constant)}
		}
		return Instruction{kind: iFunc, fn: fnCeil, a: cs.pushInstr(instr)}
	case fnFloor:
		instr := compileExpr(ps, cs, v.args[0])
		if instr.kind == iConst {
			return Instruction{kind: iConst, constant: math.Floor(instr.constant)}
		}
		return Instruction{kind: iFunc, fn: fnFloor, a: cs.pushInstr(instr)}
	case fnAbs:
		instr := compileExpr(ps, cs, v.args[0])
		if instr.kind == iConst {
			return Instruction{kind: iConst, constant: math.Abs(instr.constant)}
		}
		return Instruction{kind: iFunc, fn: fnAbs, a: cs.pushInstr(instr)}
	case fnSign:
		instr := compileExpr(ps, cs, v.args[0])
		if instr.kind == iConst {
			return Instruction{kind: iConst, constant: signum(instr.constant)}
		}
		return Instruction{kind: iFunc, fn: fnSign, a: cs.pushInstr(instr)}
	case fnLog:
		var base, of Instruction
		if len(v.args) == 2 {
			base = compileExpr(ps, cs, v.args[0])
			of = compileExpr(ps, cs, v.args[1])
		} else {
			base = Instruction{kind: iConst, constant: 10.0}
			of = compileExpr(ps, cs, v.args[0])
		}
		if base.kind == iConst && of.kind == iConst {
			return Instruction{kind: iConst, constant: logBase(base.constant, of.constant)}
		}
		return Instruction{kind: iLog, a: cs.pushInstr(base), b: cs.pushInstr(of)}
	case fnRound:
		var modulus, of Instruction
		if len(v.args) == 2 {
			modulus = compileExpr(ps, cs, v.args[0])
			of = compileExpr(ps, cs, v.args[1])
		} else {
			modulus = Instruction{kind: iConst, constant: 1.0}
			of = compileExpr(ps, cs, v.args[0])
		}
		if modulus.kind == iConst && of.kind == iConst {
			return Instruction{kind: iConst, constant: math.Round(of.constant/modulus.constant) * modulus.constant}
		}
		return Instruction{kind: iRound, a: cs.pushInstr(modulus), b: cs.pushInstr(of)}
	case fnMin:
		return compileMinMax(ps, cs, v.args, true)
	case fnMax:
		return compileMinMax(ps, cs, v.args, false)
	case fnE:
		return Instruction{kind: iConst, constant: math.E}
	case fnPi:
		return Instruction{kind: iConst, constant: math.Pi}
	case fnSin, fnCos, fnTan, fnAsin, fnAcos, fnAtan, fnSinh, fnCosh, fnTanh, fnAsinh, fnAcosh, fnAtanh:
		instr := compileExpr(ps, cs, v.args[0])
		if instr.kind == iConst {
			return Instruction{kind: iConst, constant: applyTrig(v.fn, instr.constant)}
		}
		return Instruction{kind: iFunc, fn: v.fn, a: cs.pushInstr(instr)}
	}
	panic("fasteval: unknown builtin function")
}

func compileMinMax(ps *ParseSlab, cs *CompileSlab, args []ExpressionIndex, isMin bool) Instruction {
	kind := iMin
	better := func(a, b float64) bool { return a < b }
	if !isMin {
		kind = iMax
		better = func(a, b float64) bool { return a > b }
	}

	first := compileExpr(ps, cs, args[0])
	var out Instruction
	outSet := false
	var constExtreme float64
	constSet := false
	if first.kind == iConst {
		constExtreme = first.constant
		constSet = true
	} else {
		out = first
		outSet = true
	}

	for _, a := range args[1:] {
		instr := compileExpr(ps, cs, a)
		if instr.kind == iConst {
			if constSet {
				if better(instr.constant, constExtreme) {
					constExtreme = instr.constant
				}
			} else {
				constExtreme = instr.constant
				constSet = true
			}
		} else if outSet {
			out = Instruction{kind: kind, a: cs.pushInstr(out), b: cs.pushInstr(instr)}
		} else {
			out = instr
			outSet = true
		}
	}

	if constSet {
		if outSet {
			out = Instruction{kind: kind, a: cs.pushInstr(out), b: cs.pushInstr(Instruction{kind: iConst, constant: constExtreme})}
		} else {
			out = Instruction{kind: iConst, constant: constExtreme}
		}
	}
	return out
}

func compileUserFuncCall(ps *ParseSlab, cs *CompileSlab, v *Value) Instruction {
	args := make([]InstructionIndex, len(v.args))
	for i, a := range v.args {
		args[i] = cs.pushInstr(compileExpr(ps, cs, a))
	}
	return Instruction{kind: iUserFunc, name: v.name, userArgs: args}
}

func compilePrint(ps *ParseSlab, cs *CompileSlab, v *Value) Instruction {
	args := make([]compiledPrintArg, len(v.printArgs))
	for i, pa := range v.printArgs {
		if pa.isString {
			args[i] = compiledPrintArg{isString: true, str: pa.str}
		} else {
			args[i] = compiledPrintArg{instr: cs.pushInstr(compileExpr(ps, cs, pa.expr))}
		}
	}
	return Instruction{kind: iPrint, printArgs: args}
}

func compileEval(ps *ParseSlab, cs *CompileSlab, v *Value) Instruction {
	bodyIdx := cs.pushInstr(compileExpr(ps, cs, v.evalBody))
	kwargs := make([]compiledKwArg, len(v.evalArgs))
	for i, kw := range v.evalArgs {
		kwargs[i] = compiledKwArg{name: kw.name, instr: cs.pushInstr(compileExpr(ps, cs, kw.expr))}
	}
	return Instruction{kind: iEval, evalBody: bodyIdx, evalArgs: kwargs}
}
