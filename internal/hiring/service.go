// Package hiring is the client core: it executes reads and mutations
// against the hiring API, mirrors every success into the local cache,
// and runs the optimistic reorder protocol for job boards.
//
// Cache writes are a population side effect of successful operations:
// they happen before the operation's result is returned, and their
// failure is logged and swallowed, never surfaced. Collection reads do
// not fall back to the cache on transport failure; a stale list is
// worse than an explicit failure.
package hiring

import (
	"log/slog"

	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/transport"
)

// Service coordinates transport and cache for all hiring operations.
type Service struct {
	api    *transport.Client
	cache  *cache.DB
	logger *slog.Logger
}

// NewService creates a hiring service over the given transport and cache.
func NewService(api *transport.Client, db *cache.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, cache: db, logger: logger}
}

// warnOnErr is the single funnel for best-effort cache writes.
func (s *Service) warnOnErr(op string, err error) {
	if err != nil {
		s.logger.Warn("cache write failed", slog.String("op", op), slog.String("error", err.Error()))
	}
}
