package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-ils/core"
	"github.com/goliatone/go-ils/driver"
)

const maskedValue = "******"

// DriverCatalog is the read side of a driver registry.
type DriverCatalog interface {
	Names() []string
	Lookup(name string) (driver.Registration, bool)
	Aliases(name string) []string
}

type InstanceLookup interface {
	Instance(name string) (core.Driver, bool)
}

type ListDriversQuery struct {
	catalog   DriverCatalog
	instances InstanceLookup
}

func NewListDriversQuery(catalog DriverCatalog, instances InstanceLookup) *ListDriversQuery {
	return &ListDriversQuery{catalog: catalog, instances: instances}
}

func (q *ListDriversQuery) Query(_ context.Context, msg ListDriversMessage) ([]DriverDescriptor, error) {
	if q == nil || q.catalog == nil {
		return nil, queryDependencyError("query: driver catalog is required")
	}
	names := q.catalog.Names()
	out := make([]DriverDescriptor, 0, len(names))
	for _, name := range names {
		registration, ok := q.catalog.Lookup(name)
		if !ok {
			continue
		}
		active := false
		if q.instances != nil {
			_, active = q.instances.Instance(registration.Name)
		}
		if msg.ActiveOnly && !active {
			continue
		}
		requires := make([]string, 0, len(registration.Requires))
		for _, capability := range registration.Requires {
			requires = append(requires, string(capability))
		}
		out = append(out, DriverDescriptor{
			Name:     registration.Name,
			Requires: requires,
			Aliases:  q.catalog.Aliases(registration.Name),
			Active:   active,
		})
	}
	return out, nil
}

type DriverConfigQuery struct {
	instances InstanceLookup
}

func NewDriverConfigQuery(instances InstanceLookup) *DriverConfigQuery {
	return &DriverConfigQuery{instances: instances}
}

func (q *DriverConfigQuery) Query(_ context.Context, msg DriverConfigMessage) (core.Config, error) {
	if q == nil || q.instances == nil {
		return nil, queryDependencyError("query: driver lookup is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	instance, ok := q.instances.Instance(msg.Driver)
	if !ok {
		return nil, core.NewDriverNotFoundError(msg.Driver)
	}
	reader, ok := instance.(interface{ Config() core.Config })
	if !ok {
		return core.Config{}, nil
	}
	cfg := reader.Config()
	if msg.Reveal {
		return cfg, nil
	}
	return maskSecrets(cfg), nil
}

func maskSecrets(cfg core.Config) core.Config {
	out := cfg.Clone()
	for _, section := range out {
		for key, value := range section {
			if text, ok := value.(string); ok && text != "" && isSecretKey(key) {
				section[key] = maskedValue
			}
		}
	}
	return out
}

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, marker := range []string{"secret", "password", "passwd", "token", "apikey", "api_key"} {
		if strings.Contains(key, marker) && !strings.HasSuffix(key, "_endpoint") && !strings.HasSuffix(key, "_url") {
			return true
		}
	}
	return false
}
