// Package source provides policy sources for the evaluation engine.
//
// A Source loads complete Policy values; it is the only configuration
// surface the core accepts. FileSource reads YAML policy documents from a
// file or directory, MemorySource serves policies constructed in code
// (including the built-in defaults). Both validate statically at load time
// so malformed policies fail fast rather than at first evaluation.
package source
