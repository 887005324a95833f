package fasteval

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func parseAndEval(t *testing.T, text string, ns Namespace) float64 {
	t.Helper()
	v, err := EzEval(text, ns)
	if err != nil {
		t.Fatalf("EzEval(%q): %v", text, err)
	}
	return v
}

func Test_Parse_siSuffixes(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect float64
	}{
		{name: "nano", input: "1n", expect: 1e-9},
		{name: "micro u", input: "1u", expect: 1e-6},
		{name: "micro sign", input: "1µ", expect: 1e-6},
		{name: "milli", input: "1m", expect: 1e-3},
		{name: "kilo lower", input: "1k", expect: 1e3},
		{name: "kilo upper", input: "1K", expect: 1e3},
		{name: "mega", input: "1M", expect: 1e6},
		{name: "giga", input: "1G", expect: 1e9},
		{name: "tera", input: "1T", expect: 1e12},
		{name: "pico", input: "1p", expect: 1e-12},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			got := parseAndEval(t, tc.input, EmptyNamespace{})
			assert.Equal(tc.expect, got)
		})
	}
}

func Test_Parse_exponentNotation(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect float64
	}{
		{name: "lowercase e positive exponent", input: "1e3", expect: 1000},
		{name: "uppercase E", input: "1E3", expect: 1000},
		{name: "explicit plus sign", input: "1e+3", expect: 1000},
		{name: "negative exponent", input: "1e-3", expect: 0.001},
		{name: "fractional mantissa", input: "2.5e2", expect: 250},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			got := parseAndEval(t, tc.input, EmptyNamespace{})
			assert.Equal(tc.expect, got)
		})
	}
}

func Test_Parse_exponentAndSiSuffixAreMutuallyExclusive(t *testing.T) {
	assert := assert.New(t)

	ps := &ParseSlab{}
	_, err := Parse(ps, "12.34e56K")
	assert.Error(err)
	var pe *ParseError
	assert.ErrorAs(err, &pe)
	assert.Equal(ErrUnparsedTokensRemaining, pe.Kind())
}

func Test_Parse_namedConstants(t *testing.T) {
	assert := assert.New(t)

	got := parseAndEval(t, "NaN", EmptyNamespace{})
	assert.True(math.IsNaN(got))

	got = parseAndEval(t, "inf", EmptyNamespace{})
	assert.Equal(math.Inf(1), got)

	got = parseAndEval(t, "-inf", EmptyNamespace{})
	assert.Equal(math.Inf(-1), got)

	got = parseAndEval(t, "+inf", EmptyNamespace{})
	assert.Equal(math.Inf(1), got)

	got = parseAndEval(t, "-NaN", EmptyNamespace{})
	assert.True(math.IsNaN(got))
}

// Named-constant matching is not identifier-boundary-aware: "NaNK" lexes as
// the literal NaN followed by a leftover "K", same as the reference.
func Test_Parse_namedConstantsAreNotIdentifierBoundaryAware(t *testing.T) {
	assert := assert.New(t)

	ps := &ParseSlab{}
	_, err := Parse(ps, "NaNK")
	assert.Error(err)
	var pe *ParseError
	assert.ErrorAs(err, &pe)
	assert.Equal(ErrUnparsedTokensRemaining, pe.Kind())

	ps2 := &ParseSlab{}
	_, err = Parse(ps2, "-infK")
	assert.Error(err)
	assert.ErrorAs(err, &pe)
	assert.Equal(ErrUnparsedTokensRemaining, pe.Kind())
}

func Test_Parse_invalidUtf8(t *testing.T) {
	assert := assert.New(t)

	ps := &ParseSlab{}
	_, err := Parse(ps, "1+\xff\xfe")
	assert.Error(err)
	var pe *ParseError
	assert.ErrorAs(err, &pe)
	assert.Equal(ErrUtf8, pe.Kind())
}

func Test_Parse_whitespaceInsensitive(t *testing.T) {
	assert := assert.New(t)

	tight := parseAndEval(t, "1+2*3", EmptyNamespace{})
	spaced := parseAndEval(t, "  1 \t+ 2 \n*   3  ", EmptyNamespace{})
	assert.Equal(tight, spaced)
}

func Test_Parse_bracketEquivalence(t *testing.T) {
	assert := assert.New(t)

	round := parseAndEval(t, "(1+2)*3", EmptyNamespace{})
	square := parseAndEval(t, "[1+2]*3", EmptyNamespace{})
	assert.Equal(round, square)
	assert.Equal(9.0, round)
}

func Test_Parse_identifierLengthBoundary(t *testing.T) {
	assert := assert.New(t)

	ok := strings.Repeat("a", maxIdentBytes)
	tooLong := strings.Repeat("a", maxIdentBytes+1)

	ps := &ParseSlab{}
	_, err := Parse(ps, ok)
	assert.NoError(err)

	ps2 := &ParseSlab{}
	_, err = Parse(ps2, tooLong)
	assert.Error(err)
	var pe *ParseError
	assert.ErrorAs(err, &pe)
	assert.Equal(ErrTooLong, pe.Kind())
}

func Test_Parse_expressionLengthBoundary(t *testing.T) {
	assert := assert.New(t)

	ok := strings.Repeat("1+", (maxExprBytes-1)/2) + "1"
	assert.LessOrEqual(len(ok), maxExprBytes)
	ps := &ParseSlab{}
	_, err := Parse(ps, ok)
	assert.NoError(err)

	tooLong := ok + strings.Repeat("1", maxExprBytes-len(ok)+1)
	ps2 := &ParseSlab{}
	_, err = Parse(ps2, tooLong)
	assert.Error(err)
	var pe *ParseError
	assert.ErrorAs(err, &pe)
	assert.Equal(ErrTooLong, pe.Kind())
}

func Test_Parse_parenDepthBoundary(t *testing.T) {
	assert := assert.New(t)

	ok := strings.Repeat("(", maxParenDepth) + "1" + strings.Repeat(")", maxParenDepth)
	ps := &ParseSlab{}
	_, err := Parse(ps, ok)
	assert.NoError(err)

	tooDeep := strings.Repeat("(", maxParenDepth+1) + "1" + strings.Repeat(")", maxParenDepth+1)
	ps2 := &ParseSlab{}
	_, err = Parse(ps2, tooDeep)
	assert.Error(err)
	var pe *ParseError
	assert.ErrorAs(err, &pe)
	assert.Equal(ErrTooDeep, pe.Kind())
}

func Test_Parse_unknownNameBecomesVarOrUserFunc(t *testing.T) {
	assert := assert.New(t)

	ps := &ParseSlab{}
	ei, err := Parse(ps, "frob")
	assert.NoError(err)
	v := ps.Val(ps.Expr(ei).first)
	assert.Equal(valVar, v.kind)

	ps2 := &ParseSlab{}
	ei2, err := Parse(ps2, "frob(1,2)")
	assert.NoError(err)
	v2 := ps2.Val(ps2.Expr(ei2).first)
	assert.Equal(valUserFunc, v2.kind)
	assert.Equal("frob", v2.name)
	assert.Len(v2.args, 2)
}

func Test_Parse_builtinArity(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expectErr bool
	}{
		{name: "abs takes 1", input: "abs(1)", expectErr: false},
		{name: "abs rejects 2", input: "abs(1,2)", expectErr: true},
		{name: "log takes 1", input: "log(1)", expectErr: false},
		{name: "log takes 2", input: "log(2,100)", expectErr: false},
		{name: "log rejects 3", input: "log(1,2,3)", expectErr: true},
		{name: "min takes 1+", input: "min(1)", expectErr: false},
		{name: "min rejects 0", input: "min()", expectErr: true},
		{name: "e takes 0", input: "e()", expectErr: false},
		{name: "e rejects 1", input: "e(1)", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			ps := &ParseSlab{}
			_, err := Parse(ps, tc.input)
			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func Test_Parse_evalDuplicateKwarg(t *testing.T) {
	assert := assert.New(t)

	ps := &ParseSlab{}
	_, err := Parse(ps, "eval(a, a=1, a=2)")
	assert.Error(err)
	var pe *ParseError
	assert.ErrorAs(err, &pe)
	assert.Equal(ErrAlreadyExists, pe.Kind())
}

func Test_Parse_printQuotedString(t *testing.T) {
	assert := assert.New(t)

	ps := &ParseSlab{}
	_, err := Parse(ps, `print("hello\n", 1+2, "\ttab")`)
	assert.NoError(err)
}

func Test_Parse_unsafeVar(t *testing.T) {
	assert := assert.New(t)

	x := 42.0
	ps := &ParseSlab{}
	ps.AddUnsafeVar("x", &x)
	ei, err := Parse(ps, "x")
	assert.NoError(err)
	v := ps.Val(ps.Expr(ei).first)
	assert.Equal(valUnsafeVar, v.kind)
	assert.Same(&x, v.addr)
}
