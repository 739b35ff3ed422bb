package mpro

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Field is one named bit range of the microprogram word.
	Field int

	// Word is one packed DSP step.
	Word uint64

	layout struct {
		name  string
		width uint
		off   uint
		mask  Word
	}
)

const (
	TRA Field = iota
	TWT
	TWA
	XSEL
	YSEL
	IRA
	IWT
	IWA
	TABLE
	MWT
	MRD
	EWT
	EWA
	ADRL
	FRCL
	SHIFT
	YRL
	NEGB
	ZERO
	BSEL
	NOFL
	MASA
	ADREB
	NXADR

	NumFields
)

// Steps is the number of steps the DSP executes per sample.
const Steps = 128

var fields = [NumFields]layout{
	TRA:   mk("TRA", 7, 57),
	TWT:   mk("TWT", 1, 56),
	TWA:   mk("TWA", 7, 49),
	XSEL:  mk("XSEL", 1, 47),
	YSEL:  mk("YSEL", 2, 45),
	IRA:   mk("IRA", 6, 39),
	IWT:   mk("IWT", 1, 38),
	IWA:   mk("IWA", 5, 33),
	TABLE: mk("TABLE", 1, 31),
	MWT:   mk("MWT", 1, 30),
	MRD:   mk("MRD", 1, 29),
	EWT:   mk("EWT", 1, 28),
	EWA:   mk("EWA", 4, 24),
	ADRL:  mk("ADRL", 1, 23),
	FRCL:  mk("FRCL", 1, 22),
	SHIFT: mk("SHIFT", 2, 20),
	YRL:   mk("YRL", 1, 19),
	NEGB:  mk("NEGB", 1, 18),
	ZERO:  mk("ZERO", 1, 17),
	BSEL:  mk("BSEL", 1, 16),
	NOFL:  mk("NOFL", 1, 15),
	MASA:  mk("MASA", 6, 9),
	ADREB: mk("ADREB", 1, 8),
	NXADR: mk("NXADR", 1, 7),
}

// Used is the union of all field masks.
var Used Word

func init() {
	for _, f := range fields {
		if Used&f.mask != 0 {
			panic("overlapping field: " + f.name)
		}

		Used |= f.mask
	}
}

func mk(name string, width, off uint) layout {
	return layout{
		name:  name,
		width: width,
		off:   off,
		mask:  (1<<width - 1) << off,
	}
}

func (f Field) String() string {
	if f < 0 || f >= NumFields {
		return fmt.Sprintf("Field(%d)", int(f))
	}

	return fields[f].name
}

func (f Field) Width() uint  { return fields[f].width }
func (f Field) Offset() uint { return fields[f].off }
func (f Field) Mask() Word   { return fields[f].mask }

// Max is the largest value the field can hold.
func (f Field) Max() uint64 { return 1<<fields[f].width - 1 }

func (w Word) Get(f Field) uint64 {
	l := &fields[f]

	return uint64(w&l.mask) >> l.off
}

// Set replaces the field value. Bits above the field width are dropped.
func (w Word) Set(f Field, v uint64) Word {
	l := &fields[f]

	return w&^l.mask | Word(v<<l.off)&l.mask
}

func (w Word) Has(f Field) bool {
	return w&fields[f].mask != 0
}

func (w Word) Clear(f ...Field) Word {
	for _, f := range f {
		w &^= fields[f].mask
	}

	return w
}

// Pick returns only the bits of the listed fields.
func (w Word) Pick(f ...Field) (r Word) {
	for _, f := range f {
		r |= w & fields[f].mask
	}

	return r
}

func (w Word) IsZero() bool { return w == 0 }

// Range calls fn for every nonzero field in declaration order.
func (w Word) Range(fn func(f Field, v uint64) bool) {
	for f := Field(0); f < NumFields; f++ {
		v := w.Get(f)
		if v == 0 {
			continue
		}

		if !fn(f, v) {
			return
		}
	}
}

// Flags builds a word with every listed one-bit field set.
func Flags(f ...Field) (w Word) {
	for _, f := range f {
		w = w.Set(f, 1)
	}

	return w
}

func (w Word) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendSemantic(b, tlwire.Hex)
	b = e.AppendUint64(b, uint64(w))

	return b
}
