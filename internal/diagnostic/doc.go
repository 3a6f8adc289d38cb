// Package diagnostic provides structured errors and warnings tied to a
// struct field, collected across a whole run before anything is reported.
//
// Key capabilities:
//   - Marker/directive conflicts naming both sides
//   - Marker placed on a type with the wrong optional shape
//   - Unknown markers with "did you mean" suggestions
//   - Overlay entries that refer to missing types or fields
package diagnostic
