// Package gen applies a resolved plan back to Go source.
//
// Only the struct tags of rewritten fields are edited: the directive key gets
// the synthesized value, every other key keeps its position, and the marker
// key is optionally removed. Files are re-printed with go/format.
//
// The rewriter refuses to run on a plan with error diagnostics, so a file is
// either fully rewritten or left untouched.
package gen
