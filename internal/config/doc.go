// Package config resolves the service settings from environment variables.
// Each variable is described by a typed EnvironmentVariable that knows its
// defaults (plain or restricted to a deployment mode), its validator and its
// converter. Settings aggregates the resolved values, and Provider memoizes a
// single Settings instance until it is explicitly reloaded.
package config
