// Package core contains the canonical ILS driver contracts, data model and
// error envelopes. Drivers and adapters depend on this package; core must not
// depend on transport, cache backend or vendor-specific packages.
package core
