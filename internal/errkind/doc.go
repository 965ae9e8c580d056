// Package errkind defines the sentinel error markers used to classify
// failures across gamedex: expected absence, transient I/O, validation,
// configuration, and corruption. Callers branch with errors.Is rather than
// string matching.
package errkind
