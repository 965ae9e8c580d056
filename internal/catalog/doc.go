// Package catalog provides the persistent external catalog cache: a
// line-oriented id-to-title lookup table with fuzzy title matching, an
// on-demand remote query path, and a rate-limited background scraper that
// sweeps the missing-id space.
//
// # Storage
//
// Entries live in a UTF-8 text file, one `id;type;normalizedTitle;title`
// line per entry, ordered by ascending id. A `.missing` sidecar lists ids
// still absent from the catalog, each optionally stamped with the date of
// the last failed lookup so recently-checked ids are skipped for a
// cool-down window. Both files are flushed write-through on every mutation;
// the scraper runs for hours or days, so crash-safety beats I/O efficiency.
//
// # Concurrency
//
// One coarse lock guards the entry set and missing list. Public lookups,
// remote discovery, and the single scraper goroutine all mutate through it.
// StopScraping has join semantics: when it returns the worker has exited
// and no further disk writes occur.
package catalog
