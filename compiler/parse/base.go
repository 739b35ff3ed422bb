package parse

import (
	"context"
	"fmt"
	"strings"

	"tlog.app/go/errors"

	"github.com/slowlang/aicadsp/compiler/ast"
)

type (
	// None is what an Optional returns when it did not match.
	None struct{}

	Optional struct {
		Parser
	}

	// Wrapped parses Of between Open and Close and returns only the Of result.
	Wrapped struct {
		Open  Parser
		Of    Parser
		Close Parser
	}

	AllOf []Parser

	// AnyOf returns the first alternative that matches.
	// Order matters when one alternative is a prefix of another.
	AnyOf []Parser
)

func (None) Parse(ctx context.Context, b []byte, st int) (_ ast.Node, i int, err error) {
	return None{}, st, nil
}

func (p Optional) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = p.Parser.Parse(ctx, b, st)
	if i == st {
		return None{}, st, nil
	}

	return
}

func (p Wrapped) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	_, i, err = p.Open.Parse(ctx, b, st)
	if err != nil {
		return nil, st, err
	}

	vst := i

	x, i, err = p.Of.Parse(ctx, b, i)
	if err != nil {
		// only the opening token matched: let the caller try something else
		if i == vst {
			i = st
		}

		return nil, i, errors.Wrap(err, "after %v", describe(p.Open))
	}

	_, i, err = p.Close.Parse(ctx, b, i)
	if err != nil {
		return nil, i, errors.Wrap(err, "closing %v", describe(p.Open))
	}

	return x, i, nil
}

func (p AllOf) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i = st
	res := make([]ast.Node, 0, len(p))

	for _, r := range p {
		x, i, err = r.Parse(ctx, b, i)
		if err != nil {
			return nil, i, err
		}

		res = append(res, x)
	}

	return res, i, nil
}

func (p AnyOf) Parse(ctx context.Context, b []byte, st int) (_ ast.Node, i int, err error) {
	i = st

	for _, r := range p {
		x, j, e := r.Parse(ctx, b, st)
		if e == nil {
			return x, j, nil
		}

		// keep the error of the alternative which got the furthest
		if j > i {
			i, err = j, e
		}
	}

	if err != nil {
		return nil, i, err
	}

	return nil, st, errors.New("expected %v", describeAll(p))
}

func describeAll(l []Parser) string {
	if len(l) == 0 {
		return "nothing"
	}

	var b strings.Builder

	for i, r := range l {
		switch {
		case i == 0:
		case i+1 == len(l):
			b.WriteString(" or ")
		default:
			b.WriteString(", ")
		}

		b.WriteString(describe(r))
	}

	return b.String()
}

// describe names p the way it is written in the source.
func describe(p Parser) string {
	switch p := p.(type) {
	case fmt.Stringer:
		return p.String()
	case Spacer:
		return describe(p.Of)
	default:
		return fmt.Sprintf("%T", p)
	}
}
