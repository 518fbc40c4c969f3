// Package storage provides decision record storage backends.
//
// The SQLite backend is the production default; the in-memory backend
// serves tests and ephemeral deployments where audit durability is not
// required.
package storage
