package ils

import (
	ilscommand "github.com/goliatone/go-ils/command"
	"github.com/goliatone/go-ils/core"
	"github.com/goliatone/go-ils/driver"
)

type Config = core.Config
type APIConfig = core.APIConfig
type Params = core.Params
type Response = core.Response
type AllowedFailures = core.AllowedFailures
type AuthToken = core.AuthToken
type CacheEntry = core.CacheEntry

type Logger = core.Logger
type LoggerProvider = core.LoggerProvider
type HTTPService = core.HTTPService
type HTTPDoer = core.HTTPDoer
type CacheBackend = core.CacheBackend
type Translator = core.Translator
type Driver = core.Driver

type Registry = driver.Registry
type Registration = driver.Registration
type Dependencies = driver.Dependencies
type Capability = driver.Capability

func NewParams(pairs ...string) Params {
	return core.NewParams(pairs...)
}

func RawBody(body string) Params {
	return core.RawBody(body)
}

func Codes(codes ...int) core.ExactCodes {
	return core.Codes(codes...)
}

func Pattern(expr string) (*core.CodePattern, error) {
	return core.Pattern(expr)
}

// DefaultRegistry returns a registry holding the built-in drivers.
func DefaultRegistry() *Registry {
	return driver.NewDefaultRegistry()
}

type RenewTokenMessage = ilscommand.RenewTokenMessage
type ClearCacheMessage = ilscommand.ClearCacheMessage
type PurgeExpiredCacheMessage = ilscommand.PurgeExpiredCacheMessage
