package domain

// Document is a single IR listing on disk.
type Document struct {
	Path string
	Size int64
	Hash string
}

// LineKind is the outcome of classifying one trimmed line.
type LineKind int

const (
	Blank LineKind = iota
	Comment
	FunctionStart
	FunctionEnd
	Label
	Metadata
	Attribute
	Declaration
	Instruction
	Other
)

func (k LineKind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Comment:
		return "comment"
	case FunctionStart:
		return "function_start"
	case FunctionEnd:
		return "function_end"
	case Label:
		return "label"
	case Metadata:
		return "metadata"
	case Attribute:
		return "attribute"
	case Declaration:
		return "declaration"
	case Instruction:
		return "instruction"
	default:
		return "other"
	}
}

type FunctionCount struct {
	Name         string `json:"name"`
	Line         int    `json:"line"`
	Instructions int    `json:"instructions"`
	Skipped      bool   `json:"skipped,omitempty"`
}

type CountResult struct {
	Path         string          `json:"path"`
	Instructions int             `json:"instructions"`
	Lines        int             `json:"lines"`
	Functions    []FunctionCount `json:"functions,omitempty"`
	Cached       bool            `json:"cached,omitempty"`
}
