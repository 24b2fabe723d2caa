package port

import "ircount/internal/domain"

// FileReader loads a file and describes it. The Document hash keys the
// result cache.
type FileReader interface {
	ReadFile(path string) (domain.Document, []byte, error)
}
