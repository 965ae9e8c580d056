// Package library owns the persistent game collection: a JSON file of
// records keyed by a title hash, kept consistent with a directory of
// launcher shortcuts. Loading verifies identity invariants and repairs
// what it safely can; saving snapshots the previous file into a pruned
// backup directory. Refresh operations fan provider fetches out over a
// worker pool and merge results by provider priority.
package library
