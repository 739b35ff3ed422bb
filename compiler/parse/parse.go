package parse

import (
	"context"
	"fmt"
	"reflect"

	"tlog.app/go/errors"

	"github.com/slowlang/aicadsp/compiler/ast"
)

type (
	Parser interface {
		Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error)
	}

	TypeExpectedError struct {
		T interface{}
	}

	PartialReadError struct {
		End int
	}
)

// Line parses the whole line with p. Trailing spaces are allowed, anything else is not.
func Line(ctx context.Context, p Parser, line []byte) (x ast.Node, err error) {
	x, i, err := Spaced(p, SpaceTab).Parse(ctx, line, 0)
	if err != nil {
		return nil, errors.Wrap(err, "parse line")
	}

	i = SpaceAll.Skip(line, i)

	if i != len(line) {
		return x, PartialReadError{End: i}
	}

	return x, nil
}

func NewTypeExpectedError(t interface{}) TypeExpectedError {
	return TypeExpectedError{
		T: t,
	}
}

func (e TypeExpectedError) Error() string {
	return fmt.Sprintf("%v expected", reflect.TypeOf(e.T))
}

func (e PartialReadError) Error() string {
	return fmt.Sprintf("unexpected text at pos %d", e.End)
}
