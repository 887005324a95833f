package fasteval

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EvalCompiled walks the compiled instruction stream rooted at i against
// ns. Unlike EvalAST, its And/Or instructions truly short-circuit: the
// right operand is only evaluated when the left one doesn't already
// determine the result. This is a deliberate, observable difference from
// EvalAST whenever the skipped operand has a side effect (print) or fails
// (an undefined name): EvalAST evaluates it and reports the error, this
// evaluator does not. Otherwise the two evaluators agree for every pure
// namespace.
func EvalCompiled(s *Slab, i InstructionIndex, ns Namespace) (float64, error) {
	return evalInstr(&s.CS, i, ns)
}

func evalInstr(cs *CompileSlab, i InstructionIndex, ns Namespace) (float64, error) {
	instr := cs.Instr(i)
	switch instr.kind {
	case iConst:
		return instr.constant, nil

	case iVar:
		v, ok := ns.Get(instr.name, nil)
		if !ok {
			return 0, newEvalError(ErrUndefined, instr.name)
		}
		return v, nil

	case iUnsafeVar:
		if instr.addr == nil {
			return 0, newEvalError(ErrInvalidValue, instr.name)
		}
		return *instr.addr, nil

	case iNeg:
		x, err := evalInstr(cs, instr.a, ns)
		return -x, err

	case iNot:
		x, err := evalInstr(cs, instr.a, ns)
		return boolToF64(x == 0.0), err

	case iInv:
		x, err := evalInstr(cs, instr.a, ns)
		return 1.0 / x, err

	case iAdd:
		l, r, err := evalBinOperands(cs, instr, ns)
		return l + r, err

	case iMul:
		l, r, err := evalBinOperands(cs, instr, ns)
		return l * r, err

	case iMod:
		l, r, err := evalBinOperands(cs, instr, ns)
		return math.Mod(l, r), err

	case iExp:
		l, r, err := evalBinOperands(cs, instr, ns)
		return math.Pow(l, r), err

	case iLT, iLTE, iEQ, iNE, iGTE, iGT:
		l, r, err := evalBinOperands(cs, instr, ns)
		if err != nil {
			return 0, err
		}
		return boolToF64(compareOp(instr.kind, l, r)), nil

	case iAnd:
		l, err := evalInstr(cs, instr.a, ns)
		if err != nil {
			return 0, err
		}
		if l == 0 {
			return l, nil
		}
		return evalInstr(cs, instr.b, ns)

	case iOr:
		l, err := evalInstr(cs, instr.a, ns)
		if err != nil {
			return 0, err
		}
		if l != 0 {
			return l, nil
		}
		return evalInstr(cs, instr.b, ns)

	case iFunc:
		return evalFuncInstr(cs, instr, ns)

	case iUserFunc:
		args := make([]float64, len(instr.userArgs))
		for idx, a := range instr.userArgs {
			x, err := evalInstr(cs, a, ns)
			if err != nil {
				return 0, err
			}
			args[idx] = x
		}
		v, ok := ns.Get(instr.name, args)
		if !ok {
			return 0, newEvalError(ErrUndefined, instr.name)
		}
		return v, nil

	case iMin, iMax:
		l, r, err := evalBinOperands(cs, instr, ns)
		if err != nil {
			return 0, err
		}
		if instr.kind == iMin {
			return rustMin(l, r), nil
		}
		return rustMax(l, r), nil

	case iLog:
		base, of, err := evalBinOperands(cs, instr, ns)
		return logBase(base, of), err

	case iRound:
		modulus, of, err := evalBinOperands(cs, instr, ns)
		return math.Round(of/modulus) * modulus, err

	case iPrint:
		return evalPrintInstr(cs, instr, ns)

	case iEval:
		return evalEvalInstr(cs, instr, ns)
	}
	panic("fasteval: unknown instruction kind")
}

func evalBinOperands(cs *CompileSlab, instr *Instruction, ns Namespace) (float64, float64, error) {
	l, err := evalInstr(cs, instr.a, ns)
	if err != nil {
		return 0, 0, err
	}
	r, err := evalInstr(cs, instr.b, ns)
	if err != nil {
		return 0, 0, err
	}
	return l, r, nil
}

func compareOp(k instrKind, l, r float64) bool {
	switch k {
	case iLT:
		return l < r
	case iLTE:
		return l <= r
	case iEQ:
		return l == r
	case iNE:
		return l != r
	case iGTE:
		return l >= r
	case iGT:
		return l > r
	}
	panic("fasteval: not a comparison instruction")
}

// evalFuncInstr handles iFunc: every unary built-in math function.
// fnE/fnPi never reach here live, since the compiler always folds them to
// iConst (they take no operand).
func evalFuncInstr(cs *CompileSlab, instr *Instruction, ns Namespace) (float64, error) {
	x, err := evalInstr(cs, instr.a, ns)
	if err != nil {
		return 0, err
	}
	switch instr.fn {
	case fnInt:
		return math.Trunc(x), nil
	case fnCeil:
		return math.Ceil(x), nil
	case fnFloor:
		return math.Floor(x), nil
	case fnAbs:
		return math.Abs(x), nil
	case fnSign:
		return signum(x), nil
	case fnSin, fnCos, fnTan, fnAsin, fnAcos, fnAtan, fnSinh, fnCosh, fnTanh, fnAsinh, fnAcosh, fnAtanh:
		return applyTrig(instr.fn, x), nil
	}
	panic("fasteval: unknown unary builtin instruction")
}

func evalPrintInstr(cs *CompileSlab, instr *Instruction, ns Namespace) (float64, error) {
	return runPrintCompiled(instr.printArgs, func(ii InstructionIndex) (float64, error) {
		return evalInstr(cs, ii, ns)
	})
}

func runPrintCompiled(args []compiledPrintArg, evalExpr func(InstructionIndex) (float64, error)) (float64, error) {
	if len(args) > 0 && args[0].isString && strings.Contains(args[0].str, "%") {
		return 0, newEvalError(ErrNotImplemented, "print format strings are not implemented")
	}

	parts := make([]string, 0, len(args))
	last := 0.0
	sawExpr := false
	for _, a := range args {
		if a.isString {
			parts = append(parts, a.str)
			continue
		}
		x, err := evalExpr(a.instr)
		if err != nil {
			return 0, err
		}
		last = x
		sawExpr = true
		parts = append(parts, strconv.FormatFloat(x, 'g', -1, 64))
	}
	fmt.Fprintln(PrintSink, strings.Join(parts, " "))
	if !sawExpr {
		return 0.0, nil
	}
	return last, nil
}

func evalEvalInstr(cs *CompileSlab, instr *Instruction, ns Namespace) (float64, error) {
	kwNames := make([]string, len(instr.evalArgs))
	kwEval := make([]func() (float64, error), len(instr.evalArgs))
	for i, kw := range instr.evalArgs {
		kw := kw
		kwNames[i] = kw.name
		kwEval[i] = func() (float64, error) { return evalInstr(cs, kw.instr, ns) }
	}
	return evalEvalCore(ns, kwNames, kwEval, func() (float64, error) {
		return evalInstr(cs, instr.evalBody, ns)
	})
}
