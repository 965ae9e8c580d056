// Package sourcedata defines the typed payloads providers contribute per
// game, their tagged JSON form, and the priority-based field resolution
// that turns a set of payloads into one coherent view of a game.
package sourcedata
