// Package cache stores raw FDSNWS response bodies and plugs them into the
// client as an fdsnws.ResponseCache.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mohammed-shakir/fdsnws-client/internal/cache/keys"
	"github.com/mohammed-shakir/fdsnws-client/pkg/fdsnws"
)

// Interface is implemented by the redisstore and lrustore backends.
type Interface interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// DelPrefix removes every key starting with prefix and reports how many.
	DelPrefix(ctx context.Context, prefix string) (int, error)
}

var _ fdsnws.ResponseCache = (*Responses)(nil)

// Responses adapts a backend to fdsnws.ResponseCache using keys.Key.
//
// It remembers when each key prefix was last invalidated and drops writes of
// bodies fetched before that, so a request in flight during an invalidation
// cannot put the old inventory back.
type Responses struct {
	store     Interface
	ttl       time.Duration
	opTimeout time.Duration
	logger    *slog.Logger

	mu          sync.Mutex
	invalidated map[string]time.Time
}

func NewResponses(store Interface, ttl, opTimeout time.Duration, logger *slog.Logger) *Responses {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Responses{
		store:       store,
		ttl:         ttl,
		opTimeout:   opTimeout,
		logger:      logger,
		invalidated: make(map[string]time.Time),
	}
}

func (r *Responses) Get(ctx context.Context, service, rawQuery string) ([]byte, bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.store.Get(ctx, keys.Key(service, rawQuery))
}

// Set stores body unless its prefix was invalidated at or after fetchedAt.
func (r *Responses) Set(ctx context.Context, service, rawQuery string, body []byte, fetchedAt time.Time) error {
	prefix := keys.Prefix(service, keys.NetworkOf(rawQuery))
	if r.staleSince(prefix, fetchedAt) {
		r.logger.DebugContext(ctx, "cache write skipped, invalidated while fetching", "prefix", prefix)
		return nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.store.Set(ctx, keys.Key(service, rawQuery), body, r.ttl)
}

// InvalidateNetwork drops the cached responses of network for service,
// including the shared bucket of multi-network and wildcard queries.
func (r *Responses) InvalidateNetwork(ctx context.Context, service, network string) (int, error) {
	prefixes := []string{keys.Prefix(service, keys.AnyNetwork)}
	if net := keys.NormalizeNetwork(network); net != keys.AnyNetwork {
		prefixes = append(prefixes, keys.Prefix(service, net))
	}
	r.markInvalidated(prefixes, time.Now())

	total := 0
	for _, p := range prefixes {
		n, err := r.store.DelPrefix(ctx, p)
		total += n
		if err != nil {
			return total, err
		}
	}
	r.logger.DebugContext(ctx, "cache invalidated", "service", service, "network", network, "keys", total)
	return total, nil
}

func (r *Responses) markInvalidated(prefixes []string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range prefixes {
		r.invalidated[p] = at
	}
}

func (r *Responses) staleSince(prefix string, fetchedAt time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.invalidated[prefix]
	return ok && !fetchedAt.After(at)
}

func (r *Responses) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.opTimeout)
}
