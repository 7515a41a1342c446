// Package storage provides audit record storage backends: an in-memory
// store for tests and short-lived runs, and a SQLite store for
// persistence across invocations.
package storage
