// Package provider implements the pluggable metadata sources and the
// registry that runs them. Providers share one contract: given a game
// title, return a typed payload, nothing, or an error; the registry
// translates errors and panics into "no data" so a failing source never
// blocks the rest.
package provider
