package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/aicadsp/compiler/diag"
	"github.com/slowlang/aicadsp/compiler/format"
	"github.com/slowlang/aicadsp/compiler/gen"
	"github.com/slowlang/aicadsp/compiler/mpro"
	"github.com/slowlang/aicadsp/compiler/opt"
	"github.com/slowlang/aicadsp/compiler/pre"
)

type (
	Result struct {
		// Text is the assembly. Empty if compilation failed.
		Text []byte

		// Macros of the compiled source. Set even if compilation failed.
		Macros map[string]pre.Macro

		Steps int
	}
)

func CompileFile(ctx context.Context, name string) (*Result, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, text)
}

// Compile translates the source into assembly text.
// Problems in the source are returned as diag.List with every diagnostic found.
func Compile(ctx context.Context, text []byte) (res *Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "size", len(text))
	defer tr.Finish("err", &err)

	pp := pre.Preprocess(ctx, string(text))

	res = &Result{
		Macros: pp.Macros,
	}

	prog := gen.Generate(ctx, pp.Lines)

	var errs diag.List
	errs = append(errs, pp.Errs...)
	errs = append(errs, prog.Errs...)

	if err = errs.Err(); err != nil {
		return res, err
	}

	op := &opt.Program{
		Steps: prog.Steps,
		Coefs: prog.Coefs,
	}

	err = opt.Run(ctx, op)
	if err != nil {
		return res, errors.Wrap(err, "optimize")
	}

	if len(op.Steps) > mpro.Steps {
		return res, diag.List{diag.New(0, "Program too long: %d steps, max %d", len(op.Steps), mpro.Steps)}
	}

	l := &format.Listing{
		Madrs: prog.Madrs,
		Steps: op.Steps,
		Coefs: op.Coefs,
	}

	obj, err := format.Format(ctx, nil, l)
	if err != nil {
		return res, errors.Wrap(err, "format")
	}

	res.Text = obj
	res.Steps = len(op.Steps)

	return res, nil
}
