// Package test contains helpers for tests of context-driven code.
package test

import (
	"context"
	"testing"
	"time"

	"github.com/ridge/quarry/tlog"
)

// Context returns a context carrying a logger that writes to the test log.
//
// Code that expects the values run.Tool puts into the context, the logger
// first of all, works with it unchanged.
func Context(t testing.TB) context.Context {
	return tlog.WithLogger(context.Background(), tlog.NewForTesting(t))
}

// ContextWithTimeout is Context closed with context.DeadlineExceeded after
// the timeout
func ContextWithTimeout(t testing.TB, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(Context(t), timeout)
	t.Cleanup(cancel)
	return ctx
}
