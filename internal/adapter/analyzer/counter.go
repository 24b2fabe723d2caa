package analyzer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"ircount/config"
	"ircount/internal/domain"
)

// maxLineSize bounds a single line; longer lines are a scan error.
const maxLineSize = 16 * 1024 * 1024

// Counter counts instruction lines inside function bodies.
//
// State is a single flat flag: a define line sets it, a standalone closing
// brace clears it. There is no nesting.
type Counter struct {
	classifier *Classifier
	excludes   []string
}

// NewCounter creates a counter. Exclude patterns are doublestar globs matched
// against function names.
func NewCounter(cfg config.CountConfig) (*Counter, error) {
	for _, pattern := range cfg.ExcludeFunctions {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %q", pattern)
		}
	}
	return &Counter{
		classifier: NewClassifier(cfg),
		excludes:   cfg.ExcludeFunctions,
	}, nil
}

// Count scans r line by line.
func (c *Counter) Count(r io.Reader) (domain.CountResult, error) {
	var result domain.CountResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLines)

	inFunction := false
	current := -1
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch c.classifier.Classify(line, inFunction) {
		case domain.FunctionStart:
			inFunction = true
			name := FunctionName(line)
			result.Functions = append(result.Functions, domain.FunctionCount{
				Name:    name,
				Line:    lineNo,
				Skipped: c.isExcluded(name),
			})
			current = len(result.Functions) - 1

		case domain.FunctionEnd:
			inFunction = false
			current = -1

		case domain.Instruction:
			if current >= 0 {
				if result.Functions[current].Skipped {
					continue
				}
				result.Functions[current].Instructions++
			}
			result.Instructions++
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("scan failed at line %d: %w", lineNo+1, err)
	}

	result.Lines = lineNo
	return result, nil
}

// CountString is a convenience wrapper around Count.
func (c *Counter) CountString(content string) (domain.CountResult, error) {
	return c.Count(strings.NewReader(content))
}

// scanLines is bufio.ScanLines extended so that "\n", "\r\n" and a lone
// "\r" all end a line.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// need one more byte to tell "\r" from "\r\n"
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func (c *Counter) isExcluded(name string) bool {
	if name == "" {
		return false
	}
	for _, pattern := range c.excludes {
		matched, err := doublestar.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}
