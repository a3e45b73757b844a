package query

import "strings"

const (
	TypeListDrivers  = "ils.query.drivers.list"
	TypeDriverConfig = "ils.query.driver.config"
)

// ListDriversMessage lists registered drivers. ActiveOnly keeps the drivers
// that currently have a built instance.
type ListDriversMessage struct {
	ActiveOnly bool
}

func (ListDriversMessage) Type() string { return TypeListDrivers }

func (ListDriversMessage) Validate() error { return nil }

// DriverConfigMessage reads the configuration of a built driver. Secret
// values are masked unless Reveal is set.
type DriverConfigMessage struct {
	Driver string
	Reveal bool
}

func (DriverConfigMessage) Type() string { return TypeDriverConfig }

func (m DriverConfigMessage) Validate() error {
	if strings.TrimSpace(m.Driver) == "" {
		return queryValidationError("driver", "driver name is required")
	}
	return nil
}

type DriverDescriptor struct {
	Name     string
	Requires []string
	Aliases  []string
	Active   bool
}
