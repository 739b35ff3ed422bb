package parse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/aicadsp/compiler/ast"
)

func TestInt(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		In  string
		Val int64
		End int
	}{
		{"0", 0, 1},
		{"12]", 12, 2},
		{"-7,", -7, 2},
		{"+3", 3, 2},
		{"0x1f", 31, 4},
		{"0b101 ", 5, 5},
	} {
		x, i, err := Int{}.Parse(ctx, []byte(tc.In), 0)
		require.NoError(t, err, "in: %q", tc.In)

		assert.Equal(t, tc.Val, x.(ast.Int).Value, "in: %q", tc.In)
		assert.Equal(t, tc.End, i, "in: %q", tc.In)
	}

	for _, in := range []string{"", "-", "x1", "12a"} {
		_, i, err := Int{}.Parse(ctx, []byte(in), 0)
		assert.Error(t, err, "in: %q", in)
		assert.Equal(t, 0, i, "in: %q", in)
	}
}

func TestKeyword(t *testing.T) {
	ctx := context.Background()

	_, i, err := Keyword("ST").Parse(ctx, []byte("ST [temp:1]"), 0)
	assert.NoError(t, err)
	assert.Equal(t, 2, i)

	_, i, err = Keyword("ST").Parse(ctx, []byte("STF madrs:1"), 0)
	assert.Error(t, err)
	assert.Equal(t, 0, i)

	_, i, err = Keyword("yreg").Parse(ctx, []byte("yreg/l"), 0)
	assert.NoError(t, err)
	assert.Equal(t, 4, i)
}

func TestDirectives(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		P    Parser
		Line string
		Exp  ast.Node
	}{
		{Madrs{}, "MADRS[3] = 0x1000", ast.Madrs{Base: ast.Base{End: 17}, Index: 3, Value: "0x1000"}},
		{Input{}, "INPUT mixer:15", ast.Input{Base: ast.Base{End: 14}, Kind: "mixer", Index: 15}},
		{Input{}, "INPUT  cdda : 1", ast.Input{Base: ast.Base{End: 15}, Kind: "cdda", Index: 1}},
		{Output{}, "OUTPUT adrs/s", ast.Output{Base: ast.Base{End: 13}, Kind: "adrs/s"}},
		{Output{}, "OUTPUT adrs", ast.Output{Base: ast.Base{End: 11}, Kind: "adrs"}},
		{Output{}, "OUTPUT mixer:2", ast.Output{Base: ast.Base{End: 14}, Kind: "mixer", Index: 2}},
		{Smode{}, "SMODE trim2", ast.Smode{Base: ast.Base{End: 11}, Mode: "trim2"}},
		{Smode{}, "SMODE sat", ast.Smode{Base: ast.Base{End: 9}, Mode: "sat"}},
	} {
		x, err := Line(ctx, tc.P, []byte(tc.Line))
		require.NoError(t, err, "line: %q", tc.Line)

		assert.Equal(t, tc.Exp, x, "line: %q", tc.Line)
	}
}

func TestMac(t *testing.T) {
	ctx := context.Background()

	x, err := Line(ctx, Mac{}, []byte("MAC input, 100"))
	require.NoError(t, err)

	m := x.(ast.Mac)
	assert.Equal(t, "input", m.Src.(ast.Keyword).Name)
	assert.Equal(t, int64(100), m.Factor.(ast.Int).Value)
	assert.Nil(t, m.Acc)

	x, err = Line(ctx, Mac{}, []byte("MAC [temp:3], yreg/l, -[ temp:3 ]"))
	require.NoError(t, err)

	m = x.(ast.Mac)
	assert.Equal(t, int64(3), m.Src.(ast.Temp).Index)
	assert.Equal(t, "yreg/l", m.Factor.(ast.Keyword).Name)
	require.NotNil(t, m.Acc)
	assert.True(t, m.Acc.Neg)
	require.NotNil(t, m.Acc.Temp)
	assert.Equal(t, int64(3), m.Acc.Temp.Index)

	x, err = Line(ctx, Mac{}, []byte("MAC input,shifted,acc"))
	require.NoError(t, err)

	m = x.(ast.Mac)
	require.NotNil(t, m.Acc)
	assert.False(t, m.Acc.Neg)
	assert.Nil(t, m.Acc.Temp)

	for _, l := range []string{
		"MAC input",
		"MAC input, 1,",
		"MAC input, 1, foo",
		"MAC mems:1, 1",
		"MAC input, 1 acc",
	} {
		_, err = Line(ctx, Mac{}, []byte(l))
		assert.Error(t, err, "line: %q", l)
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	x, err := Line(ctx, Store{}, []byte("ST [temp:5]"))
	require.NoError(t, err)

	st := x.(ast.Store)
	assert.False(t, st.NoFloat)
	assert.Equal(t, int64(5), st.Dst.(ast.Temp).Index)

	for _, tc := range []struct {
		Line string
		Exp  ast.Addr
	}{
		{"STF [madrs:4]", ast.Addr{Index: 4, Open: true, Close: true}},
		{"STF madrs:4", ast.Addr{Index: 4}},
		{"STF [madrs:4+]/s", ast.Addr{Index: 4, Open: true, Close: true, Next: true, Adrs: true}},
		{"STF madrs:4 + /s", ast.Addr{Index: 4, Next: true, Adrs: true}},
		{"STF [madrs:4", ast.Addr{Index: 4, Open: true}},
		{"STF madrs:4]", ast.Addr{Index: 4, Close: true}},
	} {
		x, err := Line(ctx, Store{}, []byte(tc.Line))
		require.NoError(t, err, "line: %q", tc.Line)

		st := x.(ast.Store)
		assert.True(t, st.NoFloat)

		a := st.Dst.(ast.Addr)
		a.Base = ast.Base{}

		assert.Equal(t, tc.Exp, a, "line: %q", tc.Line)
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	x, err := Line(ctx, Load{}, []byte("LDF [madrs:7+], mems:31"))
	require.NoError(t, err)

	ld := x.(ast.Load)
	assert.True(t, ld.NoFloat)
	assert.Equal(t, int64(7), ld.Src.Index)
	assert.True(t, ld.Src.Next)
	assert.Equal(t, int64(31), ld.Reg)

	_, err = Line(ctx, Load{}, []byte("LD [madrs:7], mixer:1"))
	assert.Error(t, err)
}

func TestLineTrailing(t *testing.T) {
	ctx := context.Background()

	_, err := Line(ctx, Smode{}, []byte("SMODE sat  "))
	assert.NoError(t, err)

	_, err = Line(ctx, Smode{}, []byte("SMODE sat x"))
	assert.ErrorAs(t, err, new(PartialReadError))
}

func TestAnyOfExpected(t *testing.T) {
	ctx := context.Background()

	_, i, err := AnyOf{Keyword("sat"), Indexed("mixer"), Temp{}}.Parse(ctx, []byte("foo"), 0)
	assert.ErrorContains(t, err, `expected "sat", mixer:N or [temp:N]`)
	assert.Equal(t, 0, i)

	// the temp alternative consumed "[" before failing, the address takes over
	x, i, err := AnyOf{Temp{}, Addr{}}.Parse(ctx, []byte("[madrs:1]"), 0)
	require.NoError(t, err)
	assert.Equal(t, 9, i)
	assert.Equal(t, int64(1), x.(ast.Addr).Index)
}

func TestSpaces(t *testing.T) {
	assert.True(t, SpaceTab.Has('\t'))
	assert.False(t, SpaceTab.Has('\n'))
	assert.True(t, SpaceAll.Has('\n'))
	assert.False(t, SpaceAll.Has('x'))

	assert.Equal(t, 3, SpaceTab.Skip([]byte(" \t x"), 0))
	assert.Equal(t, 1, SpaceTab.Skip([]byte("x\n"), 1))
}
