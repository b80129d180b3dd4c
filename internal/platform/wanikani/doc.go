// Package wanikani defines the capability surface of the remote
// spaced-repetition provider: snapshot types carrying remote state, lazy
// page sequences, and the Client interface the sync engine is driven by.
//
// The HTTP transport and pagination behind the interface are a separate
// concern; the engine only depends on the types in this package.
package wanikani
