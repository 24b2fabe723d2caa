package analyzer

import (
	"regexp"
	"strings"

	"ircount/config"
	"ircount/internal/domain"
)

// instructionPattern matches an optional "%name = " assignment target
// followed by an identifier token, e.g. "%3 = load i32, ptr %a" or "ret void".
// Word characters include Unicode letters and digits, not only ASCII.
var instructionPattern = regexp.MustCompile(`^(%[\p{L}\p{N}_.]+ = )?[\p{L}\p{N}_]+`)

// functionNamePattern matches the global name on a define line.
var functionNamePattern = regexp.MustCompile(`@("[^"]*"|[-\w$.]+)`)

// Classifier decides what a single trimmed IR line is.
type Classifier struct {
	comment   string
	define    string
	close     string
	label     string
	metadata  string
	attribute string
	declare   string
}

// NewClassifier creates a classifier from the configured line markers.
// An empty marker never matches.
func NewClassifier(cfg config.CountConfig) *Classifier {
	return &Classifier{
		comment:   cfg.CommentPrefix,
		define:    cfg.DefinePrefix,
		close:     cfg.CloseBrace,
		label:     cfg.LabelSuffix,
		metadata:  cfg.MetadataPrefix,
		attribute: cfg.AttributePrefix,
		declare:   cfg.DeclarePrefix,
	}
}

// Classify returns the kind of line. The line must already be trimmed.
// Outside a function body every non-blank, non-comment line that does not
// open a function is Other.
func (c *Classifier) Classify(line string, inFunction bool) domain.LineKind {
	if line == "" {
		return domain.Blank
	}
	if hasPrefix(line, c.comment) {
		return domain.Comment
	}
	if hasPrefix(line, c.define) {
		return domain.FunctionStart
	}
	if inFunction && c.close != "" && line == c.close {
		return domain.FunctionEnd
	}
	if !inFunction {
		return domain.Other
	}

	switch {
	case c.label != "" && strings.HasSuffix(line, c.label):
		return domain.Label
	case hasPrefix(line, c.metadata):
		return domain.Metadata
	case hasPrefix(line, c.attribute):
		return domain.Attribute
	case hasPrefix(line, c.declare):
		return domain.Declaration
	}

	if instructionPattern.MatchString(line) {
		return domain.Instruction
	}
	return domain.Other
}

// FunctionName extracts the function name from a define line.
// Quoted names are returned without quotes. Returns "" if none is found.
func FunctionName(line string) string {
	m := functionNamePattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return strings.Trim(m[1], `"`)
}

func hasPrefix(s, prefix string) bool {
	return prefix != "" && strings.HasPrefix(s, prefix)
}
