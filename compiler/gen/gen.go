package gen

import (
	"context"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/aicadsp/compiler/ast"
	"github.com/slowlang/aicadsp/compiler/diag"
	"github.com/slowlang/aicadsp/compiler/mpro"
	"github.com/slowlang/aicadsp/compiler/parse"
)

type (
	// Program is the generated code of one compilation.
	Program struct {
		Steps []mpro.Word

		// Coefs is dense, one entry per step.
		Coefs []int

		Madrs []string

		Errs diag.List
	}

	// Generator holds the state carried from line to line.
	Generator struct {
		steps []mpro.Word
		coefs map[int]int
		madrs []string

		input int
		shift int

		errs diag.List
	}

	directive struct {
		Parser parse.Parser
		Handle func(g *Generator, x ast.Node, line string) error
	}
)

// Operand limits.
const (
	MaxTemp  = 128
	MaxMasa  = 64
	MaxMems  = 32
	MaxMixer = 16
	MaxCdda  = 2

	CoefMin = -1 << 12
	CoefMax = 1<<12 - 1
)

// keepAcc makes a step compute ACC = X*0 + ACC.
var keepAcc = mpro.Word(0).Set(mpro.YSEL, 1).Set(mpro.BSEL, 1)

var directives = []directive{
	{parse.Madrs{}, (*Generator).madrsDirective},
	{parse.Input{}, (*Generator).inputDirective},
	{parse.Output{}, (*Generator).outputDirective},
	{parse.Mac{}, (*Generator).macDirective},
	{parse.Smode{}, (*Generator).smodeDirective},
	{parse.Store{}, (*Generator).storeDirective},
	{parse.Load{}, (*Generator).loadDirective},
}

func New() *Generator {
	return &Generator{
		coefs: map[int]int{},
	}
}

// Generate compiles preprocessed lines. Line n of the source is lines[n-1].
func Generate(ctx context.Context, lines []string) *Program {
	g := New()

	for i, l := range lines {
		g.Line(ctx, i+1, l)
	}

	return g.Program(ctx)
}

// Line compiles one line. Problems are recorded, never returned.
func (g *Generator) Line(ctx context.Context, n int, line string) {
	line = strings.TrimSpace(line)

	if line == "" || line[0] == '#' || strings.HasPrefix(line, "//") {
		return
	}

	for _, d := range directives {
		x, err := parse.Line(ctx, d.Parser, []byte(line))
		if err != nil {
			continue
		}

		before := len(g.steps)

		err = d.Handle(g, x, line)
		if err != nil {
			g.steps = g.steps[:before]
			g.errs.Add(n, "Invalid instruction: %s: %v", line, err)

			return
		}

		tlog.SpanFromContext(ctx).V("gen_line").Printw("line", "n", n, "text", line, "steps", g.steps[before:])

		return
	}

	g.errs.Add(n, "Unhandled instruction: %s", line)
}

// Program finishes generation: pads the step list to an even length and builds the dense coefficient table.
func (g *Generator) Program(ctx context.Context) *Program {
	if len(g.steps)%2 != 0 {
		g.emit(0)
	}

	coefs := make([]int, len(g.steps))

	for i, c := range g.coefs {
		coefs[i] = c
	}

	p := &Program{
		Steps: g.steps,
		Coefs: coefs,
		Madrs: g.madrs,
		Errs:  g.errs,
	}

	if tr := tlog.SpanFromContext(ctx); tr.If("dump_steps") {
		for i, w := range p.Steps {
			tr.Printw("step", "i", i, "word", w, "coef", p.Coefs[i])
		}
	}

	return p
}

func (g *Generator) emit(w mpro.Word) int {
	g.steps = append(g.steps, w)

	return len(g.steps) - 1
}

// alignOdd makes the next emitted step odd. Memory is accessed on odd steps only.
func (g *Generator) alignOdd() {
	if len(g.steps)%2 == 0 {
		g.emit(0)
	}
}

// madrsDirective keeps the line as written. The assembler checks the table.
func (g *Generator) madrsDirective(x ast.Node, line string) error {
	g.madrs = append(g.madrs, line)

	return nil
}

func (g *Generator) inputDirective(x ast.Node, line string) error {
	in := x.(ast.Input)

	var base, limit int

	switch in.Kind {
	case "mems":
		base, limit = 0, MaxMems
	case "mixer":
		base, limit = MaxMems, MaxMixer
	case "cdda":
		base, limit = MaxMems+MaxMixer, MaxCdda
	default:
		return errors.New("unsupported input: %v", in.Kind)
	}

	if err := checkIndex(in.Kind, in.Index, limit); err != nil {
		return err
	}

	g.input = base + int(in.Index)

	return nil
}

func (g *Generator) outputDirective(x ast.Node, line string) error {
	out := x.(ast.Output)

	w := keepAcc

	switch out.Kind {
	case "yreg":
		w = w.Set(mpro.YRL, 1).Set(mpro.IRA, uint64(g.input))
	case "adrs":
		w = w.Set(mpro.ADRL, 1).Set(mpro.IRA, uint64(g.input)).Set(mpro.SHIFT, uint64(g.shift))
	case "adrs/s":
		w = w.Set(mpro.ADRL, 1).Set(mpro.SHIFT, 3)
	case "mixer":
		if err := checkIndex("mixer", out.Index, MaxMixer); err != nil {
			return err
		}

		w = w.Set(mpro.EWT, 1).Set(mpro.EWA, uint64(out.Index)).Set(mpro.SHIFT, uint64(g.shift))
	default:
		return errors.New("unsupported output: %v", out.Kind)
	}

	g.emit(w)

	// with SHIFT 3 the address comes through the accumulator path which lags a step
	if w.Has(mpro.ADRL) && w.Get(mpro.SHIFT) == 3 {
		g.emit(0)
	}

	return nil
}

func (g *Generator) macDirective(x ast.Node, line string) (err error) {
	mac := x.(ast.Mac)

	var w mpro.Word
	tra := -1

	switch src := mac.Src.(type) {
	case ast.Keyword: // input
		w = w.Set(mpro.XSEL, 1).Set(mpro.IRA, uint64(g.input))
	case ast.Temp:
		if err = checkIndex("temp", src.Index, MaxTemp); err != nil {
			return errors.Wrap(err, "source")
		}

		tra = int(src.Index)
		w = w.Set(mpro.TRA, uint64(tra))
	default:
		return parse.NewTypeExpectedError(ast.Temp{})
	}

	coef := 0

	switch f := mac.Factor.(type) {
	case ast.Keyword:
		switch f.Name {
		case "shifted":
			w = w.Set(mpro.YSEL, 0)
		case "yreg":
			w = w.Set(mpro.YSEL, 2)
		case "yreg/l":
			w = w.Set(mpro.YSEL, 3)
		default:
			return errors.New("unsupported factor: %v", f.Name)
		}
	case ast.Int:
		if f.Value < CoefMin || f.Value > CoefMax {
			return errors.New("coefficient %d out of range [%d, %d]", f.Value, CoefMin, CoefMax)
		}

		coef = int(f.Value)
		w = w.Set(mpro.YSEL, 1)
	default:
		return parse.NewTypeExpectedError(ast.Int{})
	}

	switch acc := mac.Acc; {
	case acc == nil:
		w = w.Set(mpro.ZERO, 1)
	case acc.Temp == nil:
		w = w.Set(mpro.BSEL, 1)
	default:
		if err = checkIndex("temp", acc.Temp.Index, MaxTemp); err != nil {
			return errors.Wrap(err, "accumulator")
		}

		if tra >= 0 && tra != int(acc.Temp.Index) {
			return errors.New("conflicting temp registers: temp:%d and temp:%d", tra, acc.Temp.Index)
		}

		w = w.Set(mpro.TRA, uint64(acc.Temp.Index))
	}

	if mac.Acc != nil && mac.Acc.Neg {
		w = w.Set(mpro.NEGB, 1)
	}

	i := g.emit(w)

	if coef != 0 {
		g.coefs[i] = coef
	}

	return nil
}

func (g *Generator) smodeDirective(x ast.Node, line string) error {
	switch m := x.(ast.Smode).Mode; m {
	case "sat":
		g.shift = 0
	case "sat2":
		g.shift = 1
	case "trim2":
		g.shift = 2
	case "trim":
		g.shift = 3
	default:
		return errors.New("unsupported mode: %v", m)
	}

	return nil
}

func (g *Generator) storeDirective(x ast.Node, line string) error {
	st := x.(ast.Store)

	switch dst := st.Dst.(type) {
	case ast.Temp:
		if st.NoFloat {
			return errors.New("STF needs a memory address")
		}

		if err := checkIndex("temp", dst.Index, MaxTemp); err != nil {
			return err
		}

		g.emit(keepAcc.Set(mpro.TWT, 1).Set(mpro.TWA, uint64(dst.Index)).Set(mpro.SHIFT, uint64(g.shift)))
	case ast.Addr:
		w, err := addr(dst, st.NoFloat)
		if err != nil {
			return err
		}

		g.alignOdd()
		g.emit(w.Set(mpro.MWT, 1).Set(mpro.SHIFT, uint64(g.shift)))
	default:
		return parse.NewTypeExpectedError(ast.Addr{})
	}

	return nil
}

func (g *Generator) loadDirective(x ast.Node, line string) error {
	ld := x.(ast.Load)

	w, err := addr(ld.Src, ld.NoFloat)
	if err != nil {
		return err
	}

	if err = checkIndex("mems", ld.Reg, MaxMems); err != nil {
		return err
	}

	g.alignOdd()
	g.emit(w.Set(mpro.MRD, 1))
	g.emit(0)
	g.emit(mpro.Word(0).Set(mpro.IWT, 1).Set(mpro.IWA, uint64(ld.Reg)))

	return nil
}

// addr encodes the memory address fields shared by loads and stores.
func addr(a ast.Addr, nofl bool) (w mpro.Word, err error) {
	if a.Open != a.Close {
		return 0, errors.New("unbalanced brackets")
	}

	if err = checkIndex("madrs", a.Index, MaxMasa); err != nil {
		return 0, err
	}

	w = w.Set(mpro.MASA, uint64(a.Index))

	if a.Open {
		w = w.Set(mpro.TABLE, 1)
	}

	if a.Next {
		w = w.Set(mpro.NXADR, 1)
	}

	if a.Adrs {
		w = w.Set(mpro.ADREB, 1)
	}

	if nofl {
		w = w.Set(mpro.NOFL, 1)
	}

	return w, nil
}

func checkIndex(kind string, idx int64, limit int) error {
	if idx < 0 || idx >= int64(limit) {
		return errors.New("%s index %d out of range [0, %d)", kind, idx, limit)
	}

	return nil
}
