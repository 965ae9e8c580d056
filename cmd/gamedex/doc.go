// Command gamedex manages a game library: it scans a shortcut directory,
// aggregates metadata and cover art from several providers, and tracks
// play sessions and completion.
package main
