package driver

import "github.com/goliatone/go-ils/core"

var (
	_ core.Driver              = (*Base)(nil)
	_ core.LoggerAware         = (*Base)(nil)
	_ core.LoggerProviderAware = (*Base)(nil)
	_ core.HTTPServiceAware    = (*Base)(nil)
	_ core.CacheAware          = (*Base)(nil)
	_ core.TranslatorAware     = (*Base)(nil)

	_ core.Driver = (*API)(nil)
	_ core.Driver = (*NoILS)(nil)

	_ core.AllowedFailures = authRetryFailures{}
)
