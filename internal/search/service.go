package search

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Service owns the current index and swaps it atomically on rebuild, so
// queries in flight keep the snapshot they started with.
type Service struct {
	Logger *slog.Logger

	opts    Options
	current atomic.Pointer[Index]
}

func NewService(opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Logger: logger, opts: opts}
}

// Rebuild indexes docs and makes the new index current.
func (s *Service) Rebuild(docs []Document) *Index {
	return s.RebuildWithOptions(docs, s.opts)
}

// RebuildWithOptions is Rebuild with query options that replace the
// service defaults for the new snapshot.
func (s *Service) RebuildWithOptions(docs []Document, opts Options) *Index {
	started := time.Now()
	ix := BuildWithOptions(docs, opts)
	s.current.Store(ix)
	s.Logger.Info("search index built",
		"documents", ix.Len(),
		"terms", ix.Terms(),
		"duration", time.Since(started).Round(time.Millisecond))
	return ix
}

// Index returns the current index, or nil before the first Rebuild.
func (s *Service) Index() *Index {
	return s.current.Load()
}

// Ready reports whether an index has been built.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Search queries the current index. Before the first Rebuild it returns
// an empty slice.
func (s *Service) Search(query string, limit int) []Result {
	ix := s.current.Load()
	if ix == nil {
		return []Result{}
	}
	return ix.Search(query, limit)
}
