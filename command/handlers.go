package command

import (
	"context"
	"strings"
	"time"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-ils/auth"
	"github.com/goliatone/go-ils/cache"
	"github.com/goliatone/go-ils/core"
)

// DriverLookup returns a configured driver instance by name.
type DriverLookup interface {
	Instance(name string) (core.Driver, bool)
}

type tokenSourceProvider interface {
	TokenSource() *auth.TokenSource
}

type cacheProvider interface {
	Cache() *cache.TTLCache
}

// ExpiredCachePurger is implemented by persistent cache backends.
type ExpiredCachePurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type RenewTokenCommand struct {
	drivers DriverLookup
	now     func() time.Time
}

func NewRenewTokenCommand(drivers DriverLookup) *RenewTokenCommand {
	return &RenewTokenCommand{drivers: drivers, now: time.Now}
}

func (c *RenewTokenCommand) Execute(ctx context.Context, msg RenewTokenMessage) error {
	if c == nil || c.drivers == nil {
		return commandDependencyError("command: driver lookup is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	name := strings.TrimSpace(msg.Driver)
	instance, ok := c.drivers.Instance(name)
	if !ok {
		return core.NewDriverNotFoundError(name)
	}
	provider, ok := instance.(tokenSourceProvider)
	if !ok || provider.TokenSource() == nil {
		return commandUnsupportedError(name, "oauth2 tokens")
	}
	if _, err := provider.TokenSource().Token(ctx, true); err != nil {
		return err
	}
	storeResult(ctx, RenewTokenResult{Driver: name, RenewedAt: c.now().UTC()})
	return nil
}

type ClearCacheCommand struct {
	drivers DriverLookup
}

func NewClearCacheCommand(drivers DriverLookup) *ClearCacheCommand {
	return &ClearCacheCommand{drivers: drivers}
}

func (c *ClearCacheCommand) Execute(ctx context.Context, msg ClearCacheMessage) error {
	if c == nil || c.drivers == nil {
		return commandDependencyError("command: driver lookup is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	name := strings.TrimSpace(msg.Driver)
	instance, ok := c.drivers.Instance(name)
	if !ok {
		return core.NewDriverNotFoundError(name)
	}
	provider, ok := instance.(cacheProvider)
	if !ok {
		return commandUnsupportedError(name, "caching")
	}
	ttl := provider.Cache()
	removed := make([]string, 0, len(msg.Keys))
	for _, key := range msg.Keys {
		key = strings.TrimSpace(key)
		ttl.Remove(ctx, key)
		removed = append(removed, key)
	}
	storeResult(ctx, ClearCacheResult{Driver: name, Removed: removed})
	return nil
}

type PurgeExpiredCacheCommand struct {
	purger ExpiredCachePurger
	now    func() time.Time
}

func NewPurgeExpiredCacheCommand(purger ExpiredCachePurger) *PurgeExpiredCacheCommand {
	return &PurgeExpiredCacheCommand{purger: purger, now: time.Now}
}

func (c *PurgeExpiredCacheCommand) Execute(ctx context.Context, msg PurgeExpiredCacheMessage) error {
	if c == nil || c.purger == nil {
		return commandDependencyError("command: cache purger is required")
	}
	before := msg.Before
	if before.IsZero() {
		before = c.now()
	}
	purged, err := c.purger.PurgeExpired(ctx, before.UTC())
	if err != nil {
		return err
	}
	storeResult(ctx, PurgeExpiredCacheResult{Purged: purged})
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
