package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-ils/core"
	"github.com/goliatone/go-ils/driver"
)

var (
	_ gocmd.Querier[ListDriversMessage, []DriverDescriptor] = (*ListDriversQuery)(nil)
	_ gocmd.Querier[DriverConfigMessage, core.Config]       = (*DriverConfigQuery)(nil)
	_ DriverCatalog                                         = (*driver.Registry)(nil)
)
