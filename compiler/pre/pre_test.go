package pre

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockCommentsKeepLines(t *testing.T) {
	src := "A\nB /* one\ntwo\nthree */ C\nD"

	res := Preprocess(context.Background(), src)
	require.Empty(t, res.Errs)

	require.Len(t, res.Lines, 5)
	assert.Equal(t, []string{"A", "B", "", "C", "D"}, res.Lines)
}

func TestStripBlockComments(t *testing.T) {
	for _, tc := range []struct {
		In, Out string
		Open    int
	}{
		{In: "abc", Out: "abc"},
		{In: "a/**/b", Out: "ab"},
		{In: "a/*\n*/b", Out: "a\nb"},
		{In: "a/*x*/b/*y\n\nz*/c", Out: "ab\n\nc"},
		{In: "a/* never\nclosed\n", Out: "a\n\n", Open: 1},
		{In: "a\n/*\n*/\nb /* x\ny", Out: "a\n\n\nb \n", Open: 4},
	} {
		out, open := StripBlockComments(tc.In)

		assert.Equal(t, tc.Out, out, "in: %q", tc.In)
		assert.Equal(t, tc.Open, open, "in: %q", tc.In)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	src := "INPUT mems:0\nOUTPUT mixer:1 /* oops\nOUTPUT mixer:2\nBOGUS"

	res := Preprocess(context.Background(), src)

	require.Len(t, res.Errs, 1)
	assert.Equal(t, 2, res.Errs[0].Line)
	assert.Contains(t, res.Errs[0].Msg, "Unterminated block comment")

	assert.Equal(t, []string{"INPUT mems:0", "OUTPUT mixer:1", "", ""}, res.Lines)
}

func TestLineComments(t *testing.T) {
	res := Preprocess(context.Background(), "MAC input, 1 // note\n   // whole line\n\t#include x  \n")
	require.Empty(t, res.Errs)

	assert.Equal(t, []string{"MAC input, 1", "", "#include x", ""}, res.Lines)
}

func TestDefine(t *testing.T) {
	src := `#define GAIN 100
#define SRC input
MAC SRC, GAIN
MAC SRC, GAINS
X GAIN_1 1GAIN GAIN`

	res := Preprocess(context.Background(), src)
	require.Empty(t, res.Errs)

	assert.Equal(t, "// #define GAIN 100", res.Lines[0])
	assert.Equal(t, "MAC input, 100", res.Lines[2])
	assert.Equal(t, "MAC input, GAINS", res.Lines[3])
	assert.Equal(t, "X GAIN_1 1GAIN 100", res.Lines[4])

	assert.Equal(t, Macro{Name: "GAIN", Value: "100", Line: 1}, res.Macros["GAIN"])
	assert.Equal(t, Macro{Name: "SRC", Value: "input", Line: 2}, res.Macros["SRC"])
}

func TestDefineNested(t *testing.T) {
	src := `#define A B
#define B C
#define C 7
MAC input, A`

	res := Preprocess(context.Background(), src)
	require.Empty(t, res.Errs)

	assert.Equal(t, "MAC input, 7", res.Lines[3])
}

func TestDefineUsedBeforeDefinition(t *testing.T) {
	res := Preprocess(context.Background(), "MAC input, K\n#define K 3\nMAC input, K")
	require.Empty(t, res.Errs)

	assert.Equal(t, "MAC input, K", res.Lines[0])
	assert.Equal(t, "MAC input, 3", res.Lines[2])
}

func TestRedefinition(t *testing.T) {
	src := `#define FOO 1
MAC input, FOO

#define FOO 2
MAC input, FOO`

	res := Preprocess(context.Background(), src)

	require.Len(t, res.Errs, 1)
	assert.Equal(t, 4, res.Errs[0].Line)
	assert.Contains(t, res.Errs[0].Msg, "FOO")

	assert.Equal(t, "MAC input, 1", res.Lines[4])
	assert.Equal(t, "1", res.Macros["FOO"].Value)
	assert.Equal(t, 1, res.Macros["FOO"].Line)
}

func TestCircular(t *testing.T) {
	src := `#define A B
#define B A
MAC input, A
MAC input, 1`

	res := Preprocess(context.Background(), src)

	require.Len(t, res.Errs, 1)
	assert.Equal(t, 3, res.Errs[0].Line)
	assert.Contains(t, res.Errs[0].Msg, "maximum iterations")

	assert.Equal(t, "MAC input, 1", res.Lines[3])
}

func TestSelfReference(t *testing.T) {
	res := Preprocess(context.Background(), "#define A A\nMAC input, A")
	require.Empty(t, res.Errs)

	assert.Equal(t, "MAC input, A", res.Lines[1])
}

func TestSelfMultiplying(t *testing.T) {
	res := Preprocess(context.Background(), "#define A A A\nA")

	require.Len(t, res.Errs, 1)
	assert.Equal(t, 2, res.Errs[0].Line)
	assert.LessOrEqual(t, len(res.Lines[1]), 2*MaxLineLen+1)
}

func TestDefineShapes(t *testing.T) {
	for _, tc := range []struct {
		Line string
		Name string
		Val  string
		OK   bool
	}{
		{Line: "#define X 1", Name: "X", Val: "1", OK: true},
		{Line: "#define\tX\t  a b c", Name: "X", Val: "a b c", OK: true},
		{Line: "#define X", OK: false},
		{Line: "#defineX 1", OK: false},
		{Line: "#define 1X 1", OK: false},
		{Line: "#define X-Y 1", OK: false},
	} {
		name, val, ok := parseDefine(tc.Line)

		assert.Equal(t, tc.OK, ok, "line %q", tc.Line)

		if tc.OK {
			assert.Equal(t, tc.Name, name)
			assert.Equal(t, tc.Val, val)
		}
	}

	assert.True(t, isDefine("#define"))
	assert.True(t, isDefine("#define X"))
	assert.False(t, isDefine("#defineX 1"))
	assert.False(t, isDefine("#include x"))
}

func TestMalformedDefine(t *testing.T) {
	src := "MAC input, 1\n#define FOO\n#define 1X 2\n#defineBAR 3"

	res := Preprocess(context.Background(), src)

	require.Len(t, res.Errs, 2)
	assert.Equal(t, 2, res.Errs[0].Line)
	assert.Contains(t, res.Errs[0].Msg, "Malformed #define: #define FOO")
	assert.Equal(t, 3, res.Errs[1].Line)

	assert.Equal(t, []string{"MAC input, 1", "// #define FOO", "// #define 1X 2", "#defineBAR 3"}, res.Lines)
	assert.Empty(t, res.Macros)
}

func TestOutputJoinsLines(t *testing.T) {
	src := "A\n\nB"

	res := Preprocess(context.Background(), src)

	assert.Equal(t, src, res.Output)
	assert.Equal(t, strings.Count(src, "\n")+1, len(res.Lines))
}
