package parse

import (
	"context"

	"github.com/slowlang/aicadsp/compiler/ast"
)

type (
	// Spaces is a set of bytes below 64, bit c stands for byte c.
	Spaces uint64

	Spacer struct {
		Spaces Spaces
		Of     Parser
	}
)

const (
	SpaceTab Spaces = 1<<' ' | 1<<'\t'
	SpaceAll Spaces = SpaceTab | 1<<'\r' | 1<<'\n'
)

func (s Spaces) Has(c byte) bool {
	return c < 64 && s&(1<<c) != 0
}

func (s Spaces) Skip(b []byte, st int) (i int) {
	i = st

	for i < len(b) && s.Has(b[i]) {
		i++
	}

	return i
}

func Spaced(p Parser, ss Spaces) Spacer {
	return Spacer{
		Spaces: ss,
		Of:     p,
	}
}

// Parse skips leading spaces and parses Of.
// If Of fails without consuming anything the spaces are given back too.
func (p Spacer) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	vst := p.Spaces.Skip(b, st)

	x, i, err = p.Of.Parse(ctx, b, vst)
	if err != nil && i == vst {
		i = st
	}

	return
}
