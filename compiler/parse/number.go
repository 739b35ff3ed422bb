package parse

import (
	"context"
	"strconv"

	"tlog.app/go/errors"

	"github.com/slowlang/aicadsp/compiler/ast"
)

type (
	// Int is a signed integer literal: decimal, 0x, 0o or 0b.
	Int struct{}
)

func (p Int) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i = st

	if i < len(b) && (b[i] == '-' || b[i] == '+') {
		i++
	}

	dst := i

	if i+1 < len(b) && b[i] == '0' {
		switch b[i+1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			i += 2 // skip base prefix
		}
	}

	for i < len(b) && isWord(b[i]) {
		i++
	}

	if i == dst {
		return nil, st, errors.New("Int expected")
	}

	v, err := strconv.ParseInt(string(b[st:i]), 0, 64)
	if err != nil {
		return nil, st, errors.Wrap(err, "Int expected")
	}

	return ast.Int{
		Base: ast.Base{
			Pos: st,
			End: i,
		},
		Value: v,
	}, i, nil
}

func (Int) String() string { return "integer" }
