// Package manager owns the active policy engine for a running process.
//
// The evaluation core is deliberately reload-free: an Engine is bound to
// one immutable policy for its whole life. The Manager supplies the
// composition-root counterpart - it loads policies from a Source, builds a
// fresh Engine per reload, and swaps the active engine atomically so
// in-flight evaluations keep the engine they started with. An optional
// fsnotify-backed FileWatcher triggers reloads when policy files change on
// disk; a failed reload keeps the previous engine active.
package manager
