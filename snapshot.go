package fasteval

import "github.com/dekarrin/rezi"

// SlabSnapshot is the exported, field-for-field mirror of a Slab's arena
// contents that rezi actually has something to walk: Expression, Value,
// and Instruction keep their fields unexported for the same reason any
// tagged union does (callers have no business poking at a Neg node's
// operand directly), so a snapshot needs its own exported shape.
//
// Unsafe-variable addresses do not survive a snapshot: they are host
// memory addresses, meaningless once read back in a different process or
// a later run of this one. A restored Value/Instruction of the unsafe-var
// kind carries its name but a nil address; evaluating it returns
// InvalidValue rather than dereferencing nil. A later AddUnsafeVar call does
// not fill the address back in, since registration only affects names
// parsed after it.
type SlabSnapshot struct {
	Expressions  []ExprSnapshot
	Values       []ValueSnapshot
	Instructions []InstrSnapshot
}

type ExprSnapshot struct {
	First uint32
	Pairs []PairSnapshot
}

type PairSnapshot struct {
	Op  int
	Val uint32
}

type ValueSnapshot struct {
	Kind      int
	Constant  float64
	Name      string
	Args      []uint32
	Fn        int
	Operand   uint32
	Group     uint32
	PrintArgs []PrintArgSnapshot
	EvalBody  uint32
	EvalArgs  []KwArgSnapshot
}

type PrintArgSnapshot struct {
	IsString bool
	Str      string
	Expr     uint32
}

type KwArgSnapshot struct {
	Name string
	Expr uint32
}

type InstrSnapshot struct {
	Kind      int
	Constant  float64
	Name      string
	A         uint32
	B         uint32
	Fn        int
	UserArgs  []uint32
	PrintArgs []CompiledPrintArgSnapshot
	EvalBody  uint32
	EvalArgs  []CompiledKwArgSnapshot
}

type CompiledPrintArgSnapshot struct {
	IsString bool
	Str      string
	Instr    uint32
}

type CompiledKwArgSnapshot struct {
	Name  string
	Instr uint32
}

func toSnapshot(s *Slab) SlabSnapshot {
	snap := SlabSnapshot{
		Expressions:  make([]ExprSnapshot, len(s.PS.exprs)),
		Values:       make([]ValueSnapshot, len(s.PS.vals)),
		Instructions: make([]InstrSnapshot, len(s.CS.instrs)),
	}
	for i, e := range s.PS.exprs {
		pairs := make([]PairSnapshot, len(e.pairs))
		for j, p := range e.pairs {
			pairs[j] = PairSnapshot{Op: int(p.op), Val: uint32(p.val)}
		}
		snap.Expressions[i] = ExprSnapshot{First: uint32(e.first), Pairs: pairs}
	}
	for i, v := range s.PS.vals {
		args := make([]uint32, len(v.args))
		for j, a := range v.args {
			args[j] = uint32(a)
		}
		printArgs := make([]PrintArgSnapshot, len(v.printArgs))
		for j, pa := range v.printArgs {
			printArgs[j] = PrintArgSnapshot{IsString: pa.isString, Str: pa.str, Expr: uint32(pa.expr)}
		}
		evalArgs := make([]KwArgSnapshot, len(v.evalArgs))
		for j, kw := range v.evalArgs {
			evalArgs[j] = KwArgSnapshot{Name: kw.name, Expr: uint32(kw.expr)}
		}
		snap.Values[i] = ValueSnapshot{
			Kind:      int(v.kind),
			Constant:  v.constant,
			Name:      v.name,
			Args:      args,
			Fn:        int(v.fn),
			Operand:   uint32(v.operand),
			Group:     uint32(v.group),
			PrintArgs: printArgs,
			EvalBody:  uint32(v.evalBody),
			EvalArgs:  evalArgs,
		}
	}
	for i, instr := range s.CS.instrs {
		userArgs := make([]uint32, len(instr.userArgs))
		for j, a := range instr.userArgs {
			userArgs[j] = uint32(a)
		}
		printArgs := make([]CompiledPrintArgSnapshot, len(instr.printArgs))
		for j, pa := range instr.printArgs {
			printArgs[j] = CompiledPrintArgSnapshot{IsString: pa.isString, Str: pa.str, Instr: uint32(pa.instr)}
		}
		evalArgs := make([]CompiledKwArgSnapshot, len(instr.evalArgs))
		for j, kw := range instr.evalArgs {
			evalArgs[j] = CompiledKwArgSnapshot{Name: kw.name, Instr: uint32(kw.instr)}
		}
		snap.Instructions[i] = InstrSnapshot{
			Kind:      int(instr.kind),
			Constant:  instr.constant,
			Name:      instr.name,
			A:         uint32(instr.a),
			B:         uint32(instr.b),
			Fn:        int(instr.fn),
			UserArgs:  userArgs,
			PrintArgs: printArgs,
			EvalBody:  uint32(instr.evalBody),
			EvalArgs:  evalArgs,
		}
	}
	return snap
}

func fromSnapshot(snap SlabSnapshot) *Slab {
	s := NewSlabWithCapacity(len(snap.Expressions))
	for _, e := range snap.Expressions {
		pairs := make([]exprPair, len(e.Pairs))
		for j, p := range e.Pairs {
			pairs[j] = exprPair{op: BinaryOp(p.Op), val: ValueIndex(p.Val)}
		}
		s.PS.exprs = append(s.PS.exprs, Expression{first: ValueIndex(e.First), pairs: pairs})
	}
	for _, v := range snap.Values {
		args := make([]ExpressionIndex, len(v.Args))
		for j, a := range v.Args {
			args[j] = ExpressionIndex(a)
		}
		printArgs := make([]printArg, len(v.PrintArgs))
		for j, pa := range v.PrintArgs {
			printArgs[j] = printArg{isString: pa.IsString, str: pa.Str, expr: ExpressionIndex(pa.Expr)}
		}
		evalArgs := make([]kwArg, len(v.EvalArgs))
		for j, kw := range v.EvalArgs {
			evalArgs[j] = kwArg{name: kw.Name, expr: ExpressionIndex(kw.Expr)}
		}
		s.PS.vals = append(s.PS.vals, Value{
			kind:      valueKind(v.Kind),
			constant:  v.Constant,
			name:      v.Name,
			args:      args,
			fn:        builtinFunc(v.Fn),
			operand:   ValueIndex(v.Operand),
			group:     ExpressionIndex(v.Group),
			printArgs: printArgs,
			evalBody:  ExpressionIndex(v.EvalBody),
			evalArgs:  evalArgs,
		})
	}
	for _, instr := range snap.Instructions {
		userArgs := make([]InstructionIndex, len(instr.UserArgs))
		for j, a := range instr.UserArgs {
			userArgs[j] = InstructionIndex(a)
		}
		printArgs := make([]compiledPrintArg, len(instr.PrintArgs))
		for j, pa := range instr.PrintArgs {
			printArgs[j] = compiledPrintArg{isString: pa.IsString, str: pa.Str, instr: InstructionIndex(pa.Instr)}
		}
		evalArgs := make([]compiledKwArg, len(instr.EvalArgs))
		for j, kw := range instr.EvalArgs {
			evalArgs[j] = compiledKwArg{name: kw.Name, instr: InstructionIndex(kw.Instr)}
		}
		s.CS.instrs = append(s.CS.instrs, Instruction{
			kind:      instrKind(instr.Kind),
			constant:  instr.Constant,
			name:      instr.Name,
			a:         InstructionIndex(instr.A),
			b:         InstructionIndex(instr.B),
			fn:        builtinFunc(instr.Fn),
			userArgs:  userArgs,
			printArgs: printArgs,
			evalBody:  InstructionIndex(instr.EvalBody),
			evalArgs:  evalArgs,
		})
	}
	return s
}

// Snapshot encodes the Slab's current arena contents to a portable byte
// slice via rezi, excluding any unsafe-variable host addresses.
func (s *Slab) Snapshot() ([]byte, error) {
	return rezi.EncBinary(toSnapshot(s)), nil
}

// RestoreSnapshot replaces the Slab's arena contents with what b encodes.
// Every index minted before the call is invalidated, exactly as by Clear.
func (s *Slab) RestoreSnapshot(b []byte) error {
	var snap SlabSnapshot
	if _, err := rezi.DecBinary(b, &snap); err != nil {
		return err
	}
	restored := fromSnapshot(snap)
	s.PS = restored.PS
	s.CS = restored.CS
	return nil
}
