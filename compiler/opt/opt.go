package opt

import (
	"context"

	"nikand.dev/go/heap"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/aicadsp/compiler/mpro"
)

type (
	// Program is the step list with its dense coefficient table.
	Program struct {
		Steps []mpro.Word
		Coefs []int
	}
)

var (
	memFields = []mpro.Field{mpro.MRD, mpro.TABLE, mpro.NXADR, mpro.ADREB, mpro.MASA, mpro.NOFL}
	regFields = []mpro.Field{mpro.IWT, mpro.IWA}
)

// Run applies all the passes in order.
func Run(ctx context.Context, p *Program) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "optimize", "steps", len(p.Steps))
	defer tr.Finish("err", &err)

	if len(p.Steps) != len(p.Coefs) {
		return errors.New("coefficient table size mismatch: %d steps, %d coefs", len(p.Steps), len(p.Coefs))
	}

	hoisted := Loads(ctx, p)
	swaps := TrickleDown(ctx, p)
	dropped := DropNops(ctx, p)

	tr.Printw("optimized", "hoisted", hoisted, "swaps", swaps, "dropped", dropped, "steps", len(p.Steps))

	return nil
}

func (p *Program) IsDummy(i int) bool {
	return p.Steps[i] == 0 && p.Coefs[i] == 0
}

// Loads moves memory reads to the earliest odd step they can be issued at.
// The register commit follows the read two steps later.
// A hoist only touches steps before i, so one ascending scan sees every load.
func Loads(ctx context.Context, p *Program) (hoisted int) {
	s := p.Steps

	for i := 3; i+2 < len(s); i++ {
		if !s[i].Has(mpro.MRD) || !s[i+2].Has(mpro.IWT) {
			continue
		}

		t := p.hoistTarget(i)
		if t < 0 {
			continue
		}

		tlog.SpanFromContext(ctx).V("opt_loads").Printw("hoist load", "from", i, "to", t, "reg", s[i+2].Get(mpro.IWA))

		s[t] |= s[i].Pick(memFields...)
		s[i] = s[i].Clear(memFields...)

		s[t+2] |= s[i+2].Pick(regFields...)
		s[i+2] = s[i+2].Clear(regFields...)

		hoisted++
	}

	return hoisted
}

// hoistTarget finds a new place for the read at step i, or returns -1.
func (p *Program) hoistTarget(i int) int {
	s := p.Steps
	reg := s[i+2].Get(mpro.IWA)
	adreb := s[i].Has(mpro.ADREB)

	// the read and the bubble after it would see the early commit
	for _, w := range s[i : i+2] {
		if readsMems(w, reg) || writesMems(w, reg) {
			return -1
		}
	}

	j := i

	for j > 0 {
		w := s[j-1]

		if readsMems(w, reg) || writesMems(w, reg) || w.Has(mpro.MWT) || adreb && w.Has(mpro.ADRL) {
			break
		}

		j--
	}

	if j%2 == 0 {
		j++
	}

	for t := j; t < i; t += 2 {
		if s[t].Has(mpro.MRD) || s[t].Has(mpro.MWT) || s[t+2].Has(mpro.IWT) {
			continue
		}

		return t
	}

	return -1
}

// TrickleDown moves steps without memory timing constraints into preceding dummy slots.
// Non-dummy steps keep their relative order and never pass a pinned step.
// It returns the total distance moved, which is the number of adjacent swaps it stands for.
func TrickleDown(ctx context.Context, p *Program) (swaps int) {
	tr := tlog.SpanFromContext(ctx)

	// dummy slots a step at the current index could move to
	free := heap.Heap[int]{Less: func(d []int, i, j int) bool { return d[i] < d[j] }}

	for i, w := range p.Steps {
		switch {
		case p.IsDummy(i):
			free.Push(i)
			continue
		case w.Has(mpro.MWT) || w.Has(mpro.MRD) || w.Has(mpro.IWT):
			free.Data = free.Data[:0]
			continue
		case free.Len() == 0:
			continue
		}

		t := free.Pop()

		p.Steps[t], p.Steps[i] = p.Steps[i], p.Steps[t]
		p.Coefs[t], p.Coefs[i] = p.Coefs[i], p.Coefs[t]

		free.Push(i)

		tr.V("opt_trickle").Printw("trickle step", "from", i, "to", t)

		swaps += i - t
	}

	return swaps
}

// DropNops removes pairs of adjacent dummy steps. A lone dummy stays.
// If anything is dropped the program gets new slices, the old ones are left intact.
func DropNops(ctx context.Context, p *Program) (dropped int) {
	steps := make([]mpro.Word, 0, len(p.Steps))
	coefs := make([]int, 0, len(p.Coefs))

	for i := 0; i < len(p.Steps); i++ {
		if i+1 < len(p.Steps) && p.IsDummy(i) && p.IsDummy(i+1) {
			dropped += 2
			i++

			continue
		}

		steps = append(steps, p.Steps[i])
		coefs = append(coefs, p.Coefs[i])
	}

	if dropped == 0 {
		return 0
	}

	tlog.SpanFromContext(ctx).V("opt_drop").Printw("dropped nop pairs", "dropped", dropped, "left", len(steps))

	p.Steps = steps
	p.Coefs = coefs

	return dropped
}

// readsMems reports whether the step takes MEMS[reg] through its input selector.
func readsMems(w mpro.Word, reg uint64) bool {
	if w.Get(mpro.IRA) != reg {
		return false
	}

	return w.Has(mpro.XSEL) || w.Has(mpro.YRL) || w.Has(mpro.ADRL) && w.Get(mpro.SHIFT) != 3
}

func writesMems(w mpro.Word, reg uint64) bool {
	return w.Has(mpro.IWT) && w.Get(mpro.IWA) == reg
}
