package pre

import (
	"context"
	"strings"

	"tlog.app/go/tlog"

	"github.com/slowlang/aicadsp/compiler/diag"
)

type (
	Macro struct {
		Name  string
		Value string
		Line  int
	}

	Result struct {
		Output string
		Lines  []string

		// Macros is kept for the host editor hover lookup.
		Macros map[string]Macro

		Errs diag.List
	}

	state struct {
		macros map[string]Macro

		errs diag.List
	}
)

const (
	// MaxIterations bounds macro re-expansion of a single line.
	MaxIterations = 100

	// MaxLineLen stops self-multiplying macros before they eat the memory.
	MaxLineLen = 1 << 16
)

func Preprocess(ctx context.Context, src string) (res *Result) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "preprocess", "size", len(src))
	defer func() {
		tr.Finish("macros", len(res.Macros), "errors", len(res.Errs))
	}()

	s := &state{
		macros: map[string]Macro{},
	}

	src, open := StripBlockComments(src)

	in := strings.Split(src, "\n")
	out := make([]string, len(in))

	for i, line := range in {
		out[i] = s.line(line, i+1)
	}

	// everything after the opening is blank, so it is the last one
	if open != 0 {
		s.errs.Add(open, "Unterminated block comment")
	}

	if tr.If("dump_pre") {
		for i, l := range out {
			tr.Printw("line", "n", i+1, "text", l)
		}
	}

	return &Result{
		Output: strings.Join(out, "\n"),
		Lines:  out,
		Macros: s.macros,
		Errs:   s.errs,
	}
}

func (s *state) line(line string, n int) string {
	if p := strings.Index(line, "//"); p >= 0 {
		line = line[:p]
	}

	line = strings.TrimSpace(line)

	if line == "" {
		return line
	}

	if isDefine(line) {
		name, val, ok := parseDefine(line)
		if !ok {
			s.errs.Add(n, "Malformed #define: %s", line)

			return "// " + line
		}

		if m, ok := s.macros[name]; ok {
			s.errs.Add(n, "Macro redefinition: %s (first defined at line %d)", name, m.Line)
		} else {
			s.macros[name] = Macro{Name: name, Value: val, Line: n}
		}

		return "// " + line
	}

	if line[0] == '#' {
		return line
	}

	return s.expand(line, n)
}

func (s *state) expand(line string, n int) string {
	if len(s.macros) == 0 {
		return line
	}

	for i := 0; i < MaxIterations; i++ {
		next, changed := s.substitute(line)
		if !changed {
			return line
		}

		line = next

		if len(line) > MaxLineLen {
			break
		}
	}

	s.errs.Add(n, "Macro expansion exceeded maximum iterations (%d), possible circular definition", MaxIterations)

	return line
}

// substitute replaces every whole word naming a macro with its value.
func (s *state) substitute(line string) (_ string, changed bool) {
	var b strings.Builder

	for i := 0; i < len(line); {
		if !isWord(line[i]) {
			b.WriteByte(line[i])
			i++

			continue
		}

		st := i

		for i < len(line) && isWord(line[i]) {
			i++
		}

		w := line[st:i]

		m, ok := s.macros[w]
		if !ok {
			b.WriteString(w)
			continue
		}

		b.WriteString(m.Value)

		changed = changed || m.Value != w
	}

	return b.String(), changed
}

// StripBlockComments removes /* */ comments keeping every newline they contained.
// An unterminated comment runs to the end of the text,
// open is the 1-based line it starts at then, and 0 otherwise.
func StripBlockComments(src string) (_ string, open int) {
	var b strings.Builder

	line := 1

	for {
		st := strings.Index(src, "/*")
		if st < 0 {
			b.WriteString(src)
			break
		}

		b.WriteString(src[:st])
		line += strings.Count(src[:st], "\n")

		end := strings.Index(src[st+2:], "*/")
		if end < 0 {
			b.WriteString(strings.Repeat("\n", strings.Count(src[st:], "\n")))
			return b.String(), line
		}

		end += st + 2

		nl := strings.Count(src[st:end], "\n")
		b.WriteString(strings.Repeat("\n", nl))
		line += nl

		src = src[end+2:]
	}

	return b.String(), 0
}

// isDefine reports whether the line is a #define directive, well formed or not.
func isDefine(line string) bool {
	const kw = "#define"

	return strings.HasPrefix(line, kw) && (len(line) == len(kw) || isSpace(line[len(kw)]))
}

func parseDefine(line string) (name, val string, ok bool) {
	const kw = "#define"

	if !strings.HasPrefix(line, kw) {
		return
	}

	rest := line[len(kw):]

	if rest == "" || !isSpace(rest[0]) {
		return
	}

	rest = strings.TrimLeft(rest, " \t")

	i := 0
	for i < len(rest) && isWord(rest[i]) {
		i++
	}

	if i == 0 || rest[0] >= '0' && rest[0] <= '9' || i == len(rest) || !isSpace(rest[i]) {
		return
	}

	name = rest[:i]
	val = strings.TrimSpace(rest[i:])

	return name, val, val != ""
}

func isWord(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}
