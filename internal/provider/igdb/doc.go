// Package igdb is a minimal IGDB v4 API client covering the endpoints the
// metadata provider needs: game search and details plus the reference
// lookups for genres, companies, covers and completion times. Auth uses
// the Twitch client-credentials flow with transparent token refresh.
package igdb
