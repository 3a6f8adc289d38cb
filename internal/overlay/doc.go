// Package overlay provides the YAML marker overlay: markers declared outside
// the Go source, for structs whose tags the author does not own directly
// (for example structs that another generator rewrites).
//
// # Schema Overview
//
//	version: "1"
//	types:
//	  - type: store.Customer        # pkgname.Type, import/path.Type or Type
//	    fields:
//	      Address: [nullable]
//	      Nickname: [nullable, not_required]
//	      Settings.Theme: [not_required]   # field of an anonymous struct
//
// Overlay markers are merged with the markers found in struct tags. Entries
// that do not resolve to a declared struct or field are reported as errors,
// with suggestions for near misses.
package overlay
