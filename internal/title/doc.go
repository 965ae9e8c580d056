// Package title provides the pure string machinery used to reconcile a
// locally known game title against noisy external catalog titles:
// normalization, Damerau-Levenshtein edit distance, and conservative
// best-match selection with substring pre-filtering and a length-based
// distance threshold.
package title
