package main

import (
	"context"
	"os"
	"sort"

	"github.com/nikandfor/hacked/hfmt"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/aicadsp/compiler"
	"github.com/slowlang/aicadsp/compiler/pre"
)

func main() {
	compileCmd := &cli.Command{
		Name:   "compile",
		Action: compileAct,
		Args:   cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", "", "write assembly to file instead of stdout"),
		},
	}

	preprocessCmd := &cli.Command{
		Name:   "preprocess,pre",
		Action: preprocessAct,
		Args:   cli.Args{},
	}

	macrosCmd := &cli.Command{
		Name:   "macros",
		Action: macrosAct,
		Args:   cli.Args{},
	}

	app := &cli.Command{
		Name:        "dspc",
		Description: "dspc compiles AICA DSP effect source into MPRO assembly",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			compileCmd,
			preprocessCmd,
			macrosCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	tlog.DefaultLogger = tlog.New(tlog.NewConsoleWriter(os.Stderr, tlog.LstdFlags))

	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	var out []byte

	for _, a := range c.Args {
		res, err := compiler.CompileFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		out = append(out, res.Text...)
	}

	if name := c.String("output"); name != "" {
		err = os.WriteFile(name, out, 0o644)
		if err != nil {
			return errors.Wrap(err, "write output")
		}

		return nil
	}

	_, err = os.Stdout.Write(out)

	return err
}

func preprocessAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		res := pre.Preprocess(ctx, string(text))

		for _, d := range res.Errs {
			tlog.Printw("preprocess", "file", a, "line", d.Line, "msg", d.Msg)
		}

		_, err = os.Stdout.WriteString(res.Output + "\n")
		if err != nil {
			return err
		}
	}

	return nil
}

func macrosAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	var b []byte

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		res := pre.Preprocess(ctx, string(text))

		names := make([]string, 0, len(res.Macros))
		for n := range res.Macros {
			names = append(names, n)
		}

		sort.Strings(names)

		for _, n := range names {
			m := res.Macros[n]
			b = hfmt.Appendf(b, "%s:%d\t%s = %s\n", a, m.Line, m.Name, m.Value)
		}
	}

	_, err = os.Stdout.Write(b)

	return err
}
