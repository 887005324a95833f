package fasteval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func compileText(t *testing.T, text string) (*ParseSlab, *CompileSlab, InstructionIndex) {
	t.Helper()
	ps := &ParseSlab{}
	ei, err := Parse(ps, text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	cs := &CompileSlab{}
	ii := Compile(ps, cs, ei)
	return ps, cs, ii
}

func Test_Compile_constantFoldsPureArithmetic(t *testing.T) {
	assert := assert.New(t)

	_, cs, ii := compileText(t, "3 * 3 - 3 / 3")
	instr := cs.Instr(ii)
	assert.Equal(iConst, instr.kind)
	assert.Equal(8.0, instr.constant)
}

func Test_Compile_minusChainFoldsLeftToRight(t *testing.T) {
	assert := assert.New(t)

	_, cs, ii := compileText(t, "3-3-3-3")
	instr := cs.Instr(ii)
	assert.Equal(iConst, instr.kind)
	assert.Equal(-6.0, instr.constant)
}

func Test_Compile_minusChainWithVariableStaysNegated(t *testing.T) {
	assert := assert.New(t)

	// 3-x-3 folds its constant terms (3 and -3 cancel) but must retain the
	// sign flip applied to x by the non-first subtraction, leaving -x rather
	// than x.
	_, cs, ii := compileText(t, "3-x-3")
	ns := MapNamespace{"x": 5}
	got, err := EvalCompiled(&Slab{CS: *cs}, ii, ns)
	assert.NoError(err)
	assert.Equal(-5.0, got)
}

func Test_Compile_expIsRightAssociative(t *testing.T) {
	assert := assert.New(t)

	// spec.md's own literal scenario documents this corpus's reference
	// implementation as left-associative here (giving 4096), but the
	// resolved Open Question for this port makes ^ right-associative
	// uniformly, so 2^3^4 folds as 2^(3^4), not (2^3)^4.
	_, cs, ii := compileText(t, "2^3^4")
	instr := cs.Instr(ii)
	assert.Equal(iConst, instr.kind)
	want := math.Pow(2, math.Pow(3, 4))
	assert.Equal(want, instr.constant)
	assert.NotEqual(4096.0, instr.constant)
}

func Test_Compile_minMaxConstantFold(t *testing.T) {
	assert := assert.New(t)

	_, cs, ii := compileText(t, "min(3,1,2)")
	instr := cs.Instr(ii)
	assert.Equal(iConst, instr.kind)
	assert.Equal(1.0, instr.constant)

	_, cs2, ii2 := compileText(t, "max(3,1,2)")
	instr2 := cs2.Instr(ii2)
	assert.Equal(iConst, instr2.kind)
	assert.Equal(3.0, instr2.constant)
}

func Test_Compile_nonConstantLeavesVar(t *testing.T) {
	assert := assert.New(t)

	_, cs, ii := compileText(t, "x * (x + 1)")
	instr := cs.Instr(ii)
	assert.NotEqual(iConst, instr.kind)
}

func Test_Compile_divFoldsToMulOfInv(t *testing.T) {
	assert := assert.New(t)

	// Division and subtraction never survive to the compiled form as their
	// own instruction kinds: x/2 lowers to Mul(x, Inv(2)), which folds
	// Inv(2) to the constant 0.5 and leaves a plain iMul.
	_, cs, ii := compileText(t, "x/2")
	instr := cs.Instr(ii)
	assert.Equal(iMul, instr.kind)

	ns := MapNamespace{"x": 10}
	got, err := EvalCompiled(&Slab{CS: *cs}, ii, ns)
	assert.NoError(err)
	assert.Equal(5.0, got)
}
