package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	ilscommand "github.com/goliatone/go-ils/command"
	"github.com/goliatone/go-ils/core"
	"github.com/goliatone/go-ils/query"
)

var errRegistryNotConfigured = fmt.Errorf("gocommand: registry is not configured")

// ValidateMessageContract requires a non-empty Type() and runs Validate()
// when the message has one.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) register(handler any) error {
	if a == nil || a.registry == nil {
		return errRegistryNotConfigured
	}
	return a.registry.RegisterCommand(handler)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return errRegistryNotConfigured
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return errRegistryNotConfigured
	}
	return a.registry.Initialize()
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

// RegisterAndSubscribe subscribes cmd on the dispatcher and records it in the
// registry. A failed registration drops the subscription again.
func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, errRegistryNotConfigured
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.register(cmd); err != nil {
		unsubscribe(subscription)
		return nil, err
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, errRegistryNotConfigured
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	if err := adapter.register(qry); err != nil {
		unsubscribe(subscription)
		return nil, err
	}
	return subscription, nil
}

// Handlers groups the ils commands and queries a host exposes on its bus.
// Nil handlers are skipped.
type Handlers struct {
	RenewToken        *ilscommand.RenewTokenCommand
	ClearCache        *ilscommand.ClearCacheCommand
	PurgeExpiredCache *ilscommand.PurgeExpiredCacheCommand
	ListDrivers       *query.ListDriversQuery
	DriverConfig      *query.DriverConfigQuery
}

type Binding struct {
	subscriptions []commanddispatcher.Subscription
}

func (b *Binding) Len() int {
	if b == nil {
		return 0
	}
	return len(b.subscriptions)
}

func (b *Binding) Unsubscribe() {
	if b == nil {
		return
	}
	for _, subscription := range b.subscriptions {
		unsubscribe(subscription)
	}
	b.subscriptions = nil
}

// Bind registers and subscribes every non-nil handler. On failure the
// handlers bound so far are unsubscribed.
func Bind(adapter *RegistryAdapter, handlers Handlers, runnerOpts ...runner.Option) (*Binding, error) {
	binding := &Binding{}
	add := func(subscription commanddispatcher.Subscription, err error) error {
		if err != nil {
			binding.Unsubscribe()
			return err
		}
		binding.subscriptions = append(binding.subscriptions, subscription)
		return nil
	}

	if handlers.RenewToken != nil {
		if err := add(RegisterAndSubscribe[ilscommand.RenewTokenMessage](adapter, handlers.RenewToken, runnerOpts...)); err != nil {
			return nil, err
		}
	}
	if handlers.ClearCache != nil {
		if err := add(RegisterAndSubscribe[ilscommand.ClearCacheMessage](adapter, handlers.ClearCache, runnerOpts...)); err != nil {
			return nil, err
		}
	}
	if handlers.PurgeExpiredCache != nil {
		if err := add(RegisterAndSubscribe[ilscommand.PurgeExpiredCacheMessage](adapter, handlers.PurgeExpiredCache, runnerOpts...)); err != nil {
			return nil, err
		}
	}
	if handlers.ListDrivers != nil {
		if err := add(RegisterAndSubscribeQuery[query.ListDriversMessage, []query.DriverDescriptor](adapter, handlers.ListDrivers, runnerOpts...)); err != nil {
			return nil, err
		}
	}
	if handlers.DriverConfig != nil {
		if err := add(RegisterAndSubscribeQuery[query.DriverConfigMessage, core.Config](adapter, handlers.DriverConfig, runnerOpts...)); err != nil {
			return nil, err
		}
	}
	return binding, nil
}

func unsubscribe(subscription commanddispatcher.Subscription) {
	if subscription != nil {
		subscription.Unsubscribe()
	}
}
