// Package mocks provides hand-written mock implementations of the
// project's interfaces for use in tests. Each mock exposes function
// fields so tests can inject exactly the behavior they need.
package mocks
