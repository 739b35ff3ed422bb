package ast

type (
	Node interface {
	}

	// Base is a byte span within the parsed line.
	Base struct {
		Pos int
		End int
	}

	Keyword struct {
		Base `tlog:",embed"`

		Name string
	}

	Int struct {
		Base `tlog:",embed"`

		Value int64
	}

	// Text is the rest of the line, taken verbatim.
	Text struct {
		Base `tlog:",embed"`

		Value string
	}

	// Indexed is a kind:index operand like mems:3.
	Indexed struct {
		Base `tlog:",embed"`

		Kind  string
		Index int64
	}

	Temp struct {
		Base `tlog:",embed"`

		Index int64
	}

	// Addr is a madrs operand, [madrs:N+]/s or madrs:N+/s.
	Addr struct {
		Base `tlog:",embed"`

		Index int64

		Open  bool
		Close bool

		Next bool
		Adrs bool
	}

	// Accum is the optional B operand of MAC. Nil Temp means the accumulator.
	Accum struct {
		Base `tlog:",embed"`

		Neg  bool
		Temp *Temp
	}
)

// Directives.
type (
	Madrs struct {
		Base `tlog:",embed"`

		Index int64
		Value string
	}

	Input struct {
		Base `tlog:",embed"`

		Kind  string
		Index int64
	}

	Output struct {
		Base `tlog:",embed"`

		Kind  string
		Index int64
	}

	Mac struct {
		Base `tlog:",embed"`

		Src    Node // Keyword or Temp
		Factor Node // Keyword or Int
		Acc    *Accum
	}

	Smode struct {
		Base `tlog:",embed"`

		Mode string
	}

	Store struct {
		Base `tlog:",embed"`

		NoFloat bool
		Dst     Node // Temp or Addr
	}

	Load struct {
		Base `tlog:",embed"`

		NoFloat bool
		Src     Addr
		Reg     int64
	}
)
