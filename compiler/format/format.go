package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/aicadsp/compiler/mpro"
)

type (
	// Listing is everything the assembly text is made of.
	Listing struct {
		Madrs []string
		Steps []mpro.Word
		Coefs []int
	}
)

func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	switch x := x.(type) {
	case *Listing:
		return formatListing(ctx, b, x)
	case mpro.Word:
		return formatWord(b, x), nil
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func formatListing(ctx context.Context, b []byte, x *Listing) ([]byte, error) {
	if len(x.Coefs) != len(x.Steps) {
		return nil, errors.New("coefficient table size mismatch: %d steps, %d coefs", len(x.Steps), len(x.Coefs))
	}

	for _, l := range x.Madrs {
		b = append(b, l...)
		b = append(b, '\n')
	}

	for i, w := range x.Steps {
		if c := x.Coefs[i]; c != 0 {
			b = hfmt.Appendf(b, "COEF[%d] = %d\n", i, c)
		}

		b = hfmt.Appendf(b, "MPRO[%d] =", i)
		b = formatWord(b, w)
		b = append(b, '\n')
	}

	return b, nil
}

// formatWord appends " FIELD" for ones and " FIELD:v" for other nonzero values.
func formatWord(b []byte, w mpro.Word) []byte {
	w.Range(func(f mpro.Field, v uint64) bool {
		if v == 1 {
			b = hfmt.Appendf(b, " %v", f)
		} else {
			b = hfmt.Appendf(b, " %v:%d", f, v)
		}

		return true
	})

	return b
}
