package diag

import (
	"fmt"
	"strings"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

type (
	// Diagnostic is a problem found at a 1-based source line.
	// Line 0 means the program as a whole.
	Diagnostic struct {
		Line int
		Msg  string
	}

	// List is an ordered set of diagnostics. A non-empty List is a compilation failure.
	List []Diagnostic
)

func New(line int, f string, args ...any) Diagnostic {
	d := Diagnostic{
		Line: line,
		Msg:  fmt.Sprintf(f, args...),
	}

	tlog.V("diag").Printw("diagnostic", "line", d.Line, "msg", d.Msg, "from", loc.Caller(1))

	return d
}

func (l *List) Add(line int, f string, args ...any) {
	*l = append(*l, New(line, f, args...))
}

func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}

	return l
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Msg)
}

func (d Diagnostic) Error() string { return d.String() }

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].String()
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%d errors:", len(l))

	for _, d := range l {
		b.WriteString("\n\t")
		b.WriteString(d.String())
	}

	return b.String()
}
