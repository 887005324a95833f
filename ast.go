package fasteval

// BinaryOp is one of the infix operators that can appear between two Values
// in a flat Expression. Precedence is not encoded by this type; it comes from
// binOpRank at compile time and from the sweep order in evalExprAST at eval
// time.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpExp
	OpLT
	OpLTE
	OpEQ
	OpNE
	OpGTE
	OpGT
	OpOR
	OpAND
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpExp:
		return "^"
	case OpLT:
		return "<"
	case OpLTE:
		return "<="
	case OpEQ:
		return "=="
	case OpNE:
		return "!="
	case OpGTE:
		return ">="
	case OpGT:
		return ">"
	case OpOR:
		return "||"
	case OpAND:
		return "&&"
	default:
		return "?"
	}
}

// exprPair is one (operator, operand) link in a flat Expression's tail.
type exprPair struct {
	op  BinaryOp
	val ValueIndex
}

// Expression is a head Value followed by a flat run of (op, Value) pairs.
// Precedence is not encoded in the shape of this tree: it is resolved at
// eval time by repeated sweeps (see evalExprAST) or at compile time by
// recursive precedence-splitting (see compileExprSlice).
type Expression struct {
	first ValueIndex
	pairs []exprPair
}

// valueKind discriminates the tagged union held by Value.
type valueKind int

const (
	valConstant valueKind = iota
	valVar
	valUnsafeVar
	valFunc     // builtin math function, 0-N ValueIndex args
	valUserFunc // undeclared-name call, e.g. sum(x,y)
	valPos
	valNeg
	valNot
	valParens
	valPrint
	valEval
)

// builtinFunc enumerates the built-in math functions and constants.
type builtinFunc int

const (
	fnInt builtinFunc = iota
	fnCeil
	fnFloor
	fnAbs
	fnSign
	fnLog
	fnRound
	fnMin
	fnMax
	fnE
	fnPi
	fnSin
	fnCos
	fnTan
	fnAsin
	fnAcos
	fnAtan
	fnSinh
	fnCosh
	fnTanh
	fnAsinh
	fnAcosh
	fnAtanh
)

var builtinNames = map[string]builtinFunc{
	"int":   fnInt,
	"ceil":  fnCeil,
	"floor": fnFloor,
	"abs":   fnAbs,
	"sign":  fnSign,
	"log":   fnLog,
	"round": fnRound,
	"min":   fnMin,
	"max":   fnMax,
	"e":     fnE,
	"pi":    fnPi,
	"sin":   fnSin,
	"cos":   fnCos,
	"tan":   fnTan,
	"asin":  fnAsin,
	"acos":  fnAcos,
	"atan":  fnAtan,
	"sinh":  fnSinh,
	"cosh":  fnCosh,
	"tanh":  fnTanh,
	"asinh": fnAsinh,
	"acosh": fnAcosh,
	"atanh": fnAtanh,
}

func (b builtinFunc) String() string {
	for name, fn := range builtinNames {
		if fn == b {
			return name
		}
	}
	return "?"
}

// kwArg is one `name = expr` keyword binding inside an eval(...) call.
type kwArg struct {
	name string
	expr ExpressionIndex
}

// printArg is one argument to print(...): either a literal string or an
// expression to evaluate and stringify.
type printArg struct {
	isString bool
	str      string
	expr     ExpressionIndex
}

// Value is the tagged union of atomic AST nodes. Only the field matching
// kind is meaningful.
type Value struct {
	kind valueKind

	constant float64 // valConstant

	name string            // valVar, valUnsafeVar, valUserFunc
	addr *float64          // valUnsafeVar
	args []ExpressionIndex // valFunc, valUserFunc
	fn   builtinFunc       // valFunc

	operand ValueIndex      // valPos, valNeg, valNot
	group   ExpressionIndex // valParens

	printArgs []printArg // valPrint

	evalBody ExpressionIndex // valEval
	evalArgs []kwArg         // valEval
}
