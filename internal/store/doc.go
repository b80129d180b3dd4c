// Package store defines the persistence interfaces the engine depends on:
// profile, vocabulary and review stores, the DBTX abstraction, and the
// transaction helper. Implementations live under internal/platform.
package store
