// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package concurrency holds the load side of the stress generator: the
// write-once shutdown flag, pinned spin workers and the pool that owns
// and joins them.
package concurrency
