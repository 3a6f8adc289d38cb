// Package plan provides the resolution pipeline that turns field markers into
// serialization directives.
//
// Resolution pipeline:
//  1. Analyze packages → struct graph
//  2. Load the marker overlay (optional) → validate
//  3. For each struct, in parallel, and for each field:
//     - Extract markers and directives into a FieldIntent
//     - Select exactly one SemanticCase
//     - Synthesize the replacement directive set
//  4. Merge diagnostics in declaration order (conflicts, malformed shapes,
//     unknown markers)
//  5. Hand every resolved struct to the schema sink, when one is configured
//
// Nothing is rewritten by this package. The rewriter in package gen consumes
// a ResolvedPlan once Resolve has returned without errors.
package plan
