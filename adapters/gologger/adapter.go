package gologger

import (
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ForDriver resolves the logger a driver writes to and tags it with the
// driver name when the logger supports fields.
func ForDriver(driverName string, provider glog.LoggerProvider, logger glog.Logger) glog.Logger {
	driverName = strings.TrimSpace(driverName)
	name := "ils"
	if driverName != "" {
		name = "ils." + driverName
	}
	_, resolved := Resolve(name, provider, logger)
	resolved = glog.Ensure(resolved)
	if driverName == "" {
		return resolved
	}
	if fields, ok := resolved.(glog.FieldsLogger); ok {
		if tagged := fields.WithFields(map[string]any{"driver": driverName}); tagged != nil {
			return tagged
		}
	}
	return resolved
}
