package parse

import (
	"bytes"
	"context"
	"strconv"

	"tlog.app/go/errors"

	"github.com/slowlang/aicadsp/compiler/ast"
)

type (
	Const []byte

	// Keyword is a Const which must not be followed by a word character.
	Keyword string

	// Rest takes everything up to the end of line.
	Rest struct{}
)

func (p Const) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	if bytes.HasPrefix(b[st:], p) {
		return Const(b[st : st+len(p)]), st + len(p), nil
	}

	return nil, st, errors.New("%q expected", []byte(p))
}

func (p Keyword) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i = st + len(p)

	if !bytes.HasPrefix(b[st:], []byte(p)) || i < len(b) && isWord(b[i]) {
		return nil, st, errors.New("%q expected", string(p))
	}

	return ast.Keyword{
		Base: ast.Base{Pos: st, End: i},
		Name: string(p),
	}, i, nil
}

func (Rest) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	v := bytes.TrimSpace(b[st:])
	if len(v) == 0 {
		return nil, st, errors.New("text expected")
	}

	return ast.Text{
		Base:  ast.Base{Pos: st, End: len(b)},
		Value: string(v),
	}, len(b), nil
}

func (p Const) String() string { return strconv.Quote(string(p)) }
func (p Keyword) String() string { return strconv.Quote(string(p)) }

func isWord(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || isDigit(c) || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
