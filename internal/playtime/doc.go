// Package playtime fetches authoritative per-app play-time counters from
// the Steam Web API.
package playtime
