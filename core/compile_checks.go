package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ AllowedFailures = ExactCodes(nil)
	_ AllowedFailures = (*CodePattern)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
