package port

import "ircount/internal/domain"

// ResultCache stores count results keyed by content hash.
type ResultCache interface {
	Get(key string) (domain.CountResult, bool, error)
	Put(key string, result domain.CountResult) error
}
