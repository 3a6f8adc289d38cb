// Package match provides edit-distance scoring and "did you mean"
// suggestions for misspelled markers, field names and type names.
//
// Key functions:
//   - Levenshtein: computes edit distance between strings
//   - Similarity: normalized similarity between two identifiers
//   - Suggest: ranks the closest candidates for an unknown name
package match
