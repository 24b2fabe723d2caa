package usecase

import (
	"bytes"
	"fmt"

	"ircount/internal/domain"
	"ircount/internal/logger"
	"ircount/internal/port"
)

// CountUseCase reads one IR file and counts its instruction lines.
type CountUseCase struct {
	reader  port.FileReader
	counter port.Counter
	cache   port.ResultCache
}

// NewCountUseCase creates a new count use case. cache may be nil.
func NewCountUseCase(reader port.FileReader, counter port.Counter, cache port.ResultCache) *CountUseCase {
	return &CountUseCase{
		reader:  reader,
		counter: counter,
		cache:   cache,
	}
}

// Count returns the instruction count for the file at path.
// Cache failures are logged and otherwise ignored.
func (u *CountUseCase) Count(path string) (*domain.CountResult, error) {
	doc, content, err := u.reader.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	logger.Debug("read %s (%d bytes, hash %s)", doc.Path, doc.Size, doc.Hash)

	if u.cache != nil {
		cached, ok, err := u.cache.Get(doc.Hash)
		switch {
		case err != nil:
			logger.Warn("cache lookup failed: %v", err)
		case ok:
			logger.Debug("cache hit for %s", doc.Path)
			cached.Path = doc.Path
			cached.Cached = true
			return &cached, nil
		}
	}

	result, err := u.counter.Count(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", doc.Path, err)
	}
	result.Path = doc.Path
	logger.Debug("counted %d instructions in %d functions over %d lines",
		result.Instructions, len(result.Functions), result.Lines)

	if u.cache != nil {
		if err := u.cache.Put(doc.Hash, result); err != nil {
			logger.Warn("cache store failed: %v", err)
		}
	}

	return &result, nil
}
