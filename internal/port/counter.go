package port

import (
	"io"

	"ircount/internal/domain"
)

// Counter tallies instruction lines in an IR listing read from r.
type Counter interface {
	Count(r io.Reader) (domain.CountResult, error)
}
