package fasteval

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// PrintSink is where the print() built-in writes its output: the single
// I/O side effect anywhere in the evaluation pipeline. Hosts that want to
// capture or silence print() output should reassign this before
// evaluating.
var PrintSink io.Writer = os.Stderr

// EvalAST walks the parse-arena AST rooted at e against ns. It resolves
// precedence by repeated reduction sweeps over a (vals, ops) pair rather
// than by tree shape, since Expression does not encode precedence in its
// shape (see ast.go). OR/AND here evaluate both operands eagerly before
// applying short-circuit-shaped logic: unlike EvalCompiled, this evaluator
// does not skip evaluating the side it ends up discarding.
func EvalAST(s *Slab, e ExpressionIndex, ns Namespace) (float64, error) {
	return evalExprAST(&s.PS, e, ns)
}

func evalExprAST(ps *ParseSlab, ei ExpressionIndex, ns Namespace) (float64, error) {
	e := ps.Expr(ei)

	first, err := evalValueAST(ps, e.first, ns)
	if err != nil {
		return 0, err
	}
	vals := make([]float64, 1, len(e.pairs)+1)
	vals[0] = first
	ops := make([]BinaryOp, 0, len(e.pairs))
	for _, pr := range e.pairs {
		v, err := evalValueAST(ps, pr.val, ns)
		if err != nil {
			return 0, err
		}
		vals = append(vals, v)
		ops = append(ops, pr.op)
	}

	// Sweep order, weakest-binding last / tightest-binding first, mirroring
	// the reference evaluator save for one deliberate divergence: Exp
	// sweeps right-to-left here (rtol) rather than left-to-right, giving
	// `^` right-associative semantics (2^3^4 == 2^(3^4)).
	vals, ops = rtolSweep(vals, ops, OpExp)
	vals, ops = ltorSweep(vals, ops, OpMod)
	vals, ops = ltorSweep(vals, ops, OpDiv)
	vals, ops = rtolSweep(vals, ops, OpMul)
	vals, ops = ltorSweep(vals, ops, OpSub)
	vals, ops = rtolSweep(vals, ops, OpAdd)
	vals, ops = ltorMultiSweep(vals, ops, OpLT, OpGT, OpLTE, OpGTE)
	vals, ops = ltorMultiSweep(vals, ops, OpEQ, OpNE)
	vals, ops = ltorSweep(vals, ops, OpAND)
	vals, ops = ltorSweep(vals, ops, OpOR)

	return vals[0], nil
}

// binaryEval applies a single binary operator to two already-evaluated
// operands. It never fails: arithmetic produces NaN/±inf rather than
// errors, per the reference's error taxonomy.
func binaryEval(op BinaryOp, l, r float64) float64 {
	switch op {
	case OpAdd:
		return l + r
	case OpSub:
		return l - r
	case OpMul:
		return l * r
	case OpDiv:
		return l / r
	case OpMod:
		return math.Mod(l, r)
	case OpExp:
		return math.Pow(l, r)
	case OpLT:
		return boolToF64(l < r)
	case OpGT:
		return boolToF64(l > r)
	case OpLTE:
		return boolToF64(l <= r)
	case OpGTE:
		return boolToF64(l >= r)
	case OpEQ:
		return boolToF64(l == r)
	case OpNE:
		return boolToF64(l != r)
	case OpOR:
		if l != 0 {
			return l
		}
		return r
	case OpAND:
		if l == 0 {
			return l
		}
		return r
	}
	panic("fasteval: unknown binary op")
}

func ltorSweep(vals []float64, ops []BinaryOp, op BinaryOp) ([]float64, []BinaryOp) {
	i := 0
	for i < len(ops) {
		if ops[i] != op {
			i++
			continue
		}
		vals[i] = binaryEval(op, vals[i], vals[i+1])
		vals = append(vals[:i+1], vals[i+2:]...)
		ops = append(ops[:i], ops[i+1:]...)
		i = 0
	}
	return vals, ops
}

func rtolSweep(vals []float64, ops []BinaryOp, op BinaryOp) ([]float64, []BinaryOp) {
	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i] != op {
			continue
		}
		vals[i] = binaryEval(op, vals[i], vals[i+1])
		vals = append(vals[:i+1], vals[i+2:]...)
		ops = append(ops[:i], ops[i+1:]...)
	}
	return vals, ops
}

// ltorMultiSweep treats every op in set as one precedence tier: `1<2==3`
// resolves entirely within whichever of the two tiers set names, rather
// than leaking into the other.
func ltorMultiSweep(vals []float64, ops []BinaryOp, set ...BinaryOp) ([]float64, []BinaryOp) {
	matches := func(op BinaryOp) bool {
		for _, o := range set {
			if o == op {
				return true
			}
		}
		return false
	}
	i := 0
	for i < len(ops) {
		if !matches(ops[i]) {
			i++
			continue
		}
		vals[i] = binaryEval(ops[i], vals[i], vals[i+1])
		vals = append(vals[:i+1], vals[i+2:]...)
		ops = append(ops[:i], ops[i+1:]...)
		i = 0
	}
	return vals, ops
}

func evalValueAST(ps *ParseSlab, vi ValueIndex, ns Namespace) (float64, error) {
	v := ps.Val(vi)
	switch v.kind {
	case valConstant:
		return v.constant, nil
	case valVar:
		val, ok := ns.Get(v.name, nil)
		if !ok {
			return 0, newEvalError(ErrUndefined, v.name)
		}
		return val, nil
	case valUnsafeVar:
		if v.addr == nil {
			return 0, newEvalError(ErrInvalidValue, v.name)
		}
		return *v.addr, nil
	case valPos:
		return evalValueAST(ps, v.operand, ns)
	case valNeg:
		x, err := evalValueAST(ps, v.operand, ns)
		if err != nil {
			return 0, err
		}
		return -x, nil
	case valNot:
		x, err := evalValueAST(ps, v.operand, ns)
		if err != nil {
			return 0, err
		}
		return boolToF64(x == 0.0), nil
	case valParens:
		return evalExprAST(ps, v.group, ns)
	case valFunc:
		return evalBuiltinAST(ps, v, ns)
	case valUserFunc:
		args := make([]float64, len(v.args))
		for i, a := range v.args {
			x, err := evalExprAST(ps, a, ns)
			if err != nil {
				return 0, err
			}
			args[i] = x
		}
		val, ok := ns.Get(v.name, args)
		if !ok {
			return 0, newEvalError(ErrUndefined, v.name)
		}
		return val, nil
	case valPrint:
		return evalPrintAST(ps, v, ns)
	case valEval:
		return evalEvalAST(ps, v, ns)
	}
	panic("fasteval: unknown value kind")
}

func evalBuiltinAST(ps *ParseSlab, v *Value, ns Namespace) (float64, error) {
	arg := func(i int) (float64, error) { return evalExprAST(ps, v.args[i], ns) }

	switch v.fn {
	case fnInt:
		x, err := arg(0)
		return math.Trunc(x), err
	case fnCeil:
		x, err := arg(0)
		return math.Ceil(x), err
	case fnFloor:
		x, err := arg(0)
		return math.Floor(x), err
	case fnAbs:
		x, err := arg(0)
		return math.Abs(x), err
	case fnSign:
		x, err := arg(0)
		return signum(x), err
	case fnLog:
		base, of := 10.0, 0.0
		var err error
		if len(v.args) == 2 {
			if base, err = arg(0); err != nil {
				return 0, err
			}
			of, err = arg(1)
		} else {
			of, err = arg(0)
		}
		if err != nil {
			return 0, err
		}
		return logBase(base, of), nil
	case fnRound:
		modulus, of := 1.0, 0.0
		var err error
		if len(v.args) == 2 {
			if modulus, err = arg(0); err != nil {
				return 0, err
			}
			of, err = arg(1)
		} else {
			of, err = arg(0)
		}
		if err != nil {
			return 0, err
		}
		return math.Round(of/modulus) * modulus, nil
	case fnMin:
		return evalMinMaxAST(ps, v.args, ns, true)
	case fnMax:
		return evalMinMaxAST(ps, v.args, ns, false)
	case fnE:
		return math.E, nil
	case fnPi:
		return math.Pi, nil
	case fnSin, fnCos, fnTan, fnAsin, fnAcos, fnAtan, fnSinh, fnCosh, fnTanh, fnAsinh, fnAcosh, fnAtanh:
		x, err := arg(0)
		return applyTrig(v.fn, x), err
	}
	panic("fasteval: unknown builtin function")
}

func evalMinMaxAST(ps *ParseSlab, args []ExpressionIndex, ns Namespace, isMin bool) (float64, error) {
	best, err := evalExprAST(ps, args[0], ns)
	if err != nil {
		return 0, err
	}
	for _, a := range args[1:] {
		x, err := evalExprAST(ps, a, ns)
		if err != nil {
			return 0, err
		}
		if isMin {
			best = rustMin(best, x)
		} else {
			best = rustMax(best, x)
		}
	}
	return best, nil
}

func evalPrintAST(ps *ParseSlab, v *Value, ns Namespace) (float64, error) {
	return runPrint(v.printArgs, func(ei ExpressionIndex) (float64, error) {
		return evalExprAST(ps, ei, ns)
	})
}

// runPrint concatenates print()'s arguments space-separated onto PrintSink
// and returns the value of the last expression argument (0.0 if there were
// none). It is shared by both evaluators; only how an expression argument
// is evaluated differs between them.
func runPrint(args []printArg, evalExpr func(ExpressionIndex) (float64, error)) (float64, error) {
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
		x, err := evalExpr(a.expr)
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

func evalEvalAST(ps *ParseSlab, v *Value, ns Namespace) (float64, error) {
	kwNames := make([]string, len(v.evalArgs))
	kwEval := make([]func() (float64, error), len(v.evalArgs))
	for i, kw := range v.evalArgs {
		kw := kw
		kwNames[i] = kw.name
		kwEval[i] = func() (float64, error) { return evalExprAST(ps, kw.expr, ns) }
	}
	return evalEvalCore(ns, kwNames, kwEval, func() (float64, error) {
		return evalExprAST(ps, v.evalBody, ns)
	})
}
