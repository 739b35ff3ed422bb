package parse

import (
	"context"

	"github.com/slowlang/aicadsp/compiler/ast"
)

type (
	// Indexed parses kind:N.
	Indexed string

	// Temp parses [temp:N].
	Temp struct{}

	// Addr parses [madrs:N+]/s and its bare form madrs:N+/s.
	// The brackets are recorded, not checked.
	Addr struct{}

	Accum struct{}

	Madrs  struct{}
	Input  struct{}
	Output struct{}
	Mac    struct{}
	Smode  struct{}
	Store  struct{}
	Load   struct{}
)

func sp(p Parser) Spacer {
	return Spaced(p, SpaceTab)
}

func (p Indexed) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Keyword(p),
		sp(Const(":")),
		sp(Int{}),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	xt := x.([]ast.Node)

	return ast.Indexed{
		Base:  ast.Base{Pos: st, End: i},
		Kind:  string(p),
		Index: xt[2].(ast.Int).Value,
	}, i, nil
}

func (p Indexed) String() string { return string(p) + ":N" }

func (Temp) String() string { return "[temp:N]" }
func (Addr) String() string { return "madrs:N" }
func (Accum) String() string { return "acc or [temp:N]" }

func (p Temp) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := Wrapped{
		Open:  Const("["),
		Of:    sp(Indexed("temp")),
		Close: sp(Const("]")),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	return ast.Temp{
		Base:  ast.Base{Pos: st, End: i},
		Index: x.(ast.Indexed).Index,
	}, i, nil
}

func (p Addr) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Optional{Const("[")},
		sp(Indexed("madrs")),
		sp(Optional{Const("+")}),
		sp(Optional{Const("]")}),
		sp(Optional{Keyword("/s")}),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	xt := x.([]ast.Node)

	return ast.Addr{
		Base:  ast.Base{Pos: st, End: i},
		Index: xt[1].(ast.Indexed).Index,
		Open:  !isNone(xt[0]),
		Next:  !isNone(xt[2]),
		Close: !isNone(xt[3]),
		Adrs:  !isNone(xt[4]),
	}, i, nil
}

func (p Accum) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Optional{AnyOf{Const("+"), Const("-")}},
		sp(AnyOf{Keyword("acc"), Temp{}}),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	xt := x.([]ast.Node)

	res := ast.Accum{
		Base: ast.Base{Pos: st, End: i},
	}

	if c, ok := xt[0].(Const); ok && string(c) == "-" {
		res.Neg = true
	}

	if t, ok := xt[1].(ast.Temp); ok {
		res.Temp = &t
	}

	return res, i, nil
}

func (p Madrs) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Const("MADRS"),
		sp(Const("[")),
		sp(Int{}),
		sp(Const("]")),
		sp(Const("=")),
		sp(Rest{}),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	xt := x.([]ast.Node)

	return ast.Madrs{
		Base:  ast.Base{Pos: st, End: i},
		Index: xt[2].(ast.Int).Value,
		Value: xt[5].(ast.Text).Value,
	}, i, nil
}

func (p Input) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Keyword("INPUT"),
		sp(AnyOf{Indexed("mems"), Indexed("mixer"), Indexed("cdda")}),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	in := x.([]ast.Node)[1].(ast.Indexed)

	return ast.Input{
		Base:  ast.Base{Pos: st, End: i},
		Kind:  in.Kind,
		Index: in.Index,
	}, i, nil
}

func (p Output) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Keyword("OUTPUT"),
		sp(AnyOf{Keyword("yreg"), Keyword("adrs/s"), Keyword("adrs"), Indexed("mixer")}),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	res := ast.Output{
		Base: ast.Base{Pos: st, End: i},
	}

	switch y := x.([]ast.Node)[1].(type) {
	case ast.Keyword:
		res.Kind = y.Name
	case ast.Indexed:
		res.Kind = y.Kind
		res.Index = y.Index
	}

	return res, i, nil
}

func (p Mac) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Keyword("MAC"),
		sp(AnyOf{Keyword("input"), Temp{}}),
		sp(Const(",")),
		sp(AnyOf{Keyword("yreg/l"), Keyword("yreg"), Keyword("shifted"), Int{}}),
		sp(Optional{AllOf{
			Const(","),
			sp(Accum{}),
		}}),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	xt := x.([]ast.Node)

	res := ast.Mac{
		Base:   ast.Base{Pos: st, End: i},
		Src:    xt[1],
		Factor: xt[3],
	}

	if acc, ok := xt[4].([]ast.Node); ok {
		a := acc[1].(ast.Accum)
		res.Acc = &a
	}

	return res, i, nil
}

func (p Smode) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Keyword("SMODE"),
		sp(AnyOf{Keyword("sat"), Keyword("sat2"), Keyword("trim"), Keyword("trim2")}),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	return ast.Smode{
		Base: ast.Base{Pos: st, End: i},
		Mode: x.([]ast.Node)[1].(ast.Keyword).Name,
	}, i, nil
}

func (p Store) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		AnyOf{Keyword("STF"), Keyword("ST")},
		sp(AnyOf{Temp{}, Addr{}}),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	xt := x.([]ast.Node)

	return ast.Store{
		Base:    ast.Base{Pos: st, End: i},
		NoFloat: xt[0].(ast.Keyword).Name == "STF",
		Dst:     xt[1],
	}, i, nil
}

func (p Load) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		AnyOf{Keyword("LDF"), Keyword("LD")},
		sp(Addr{}),
		sp(Const(",")),
		sp(Indexed("mems")),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return
	}

	xt := x.([]ast.Node)

	return ast.Load{
		Base:    ast.Base{Pos: st, End: i},
		NoFloat: xt[0].(ast.Keyword).Name == "LDF",
		Src:     xt[1].(ast.Addr),
		Reg:     xt[3].(ast.Indexed).Index,
	}, i, nil
}

func isNone(x ast.Node) bool {
	_, ok := x.(None)
	return ok
}
