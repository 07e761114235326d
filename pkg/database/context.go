package database

import (
	"context"
)

type contextKey string

const (
	// ScopeKey is the context key for storing the request-scoped database connection.
	ScopeKey contextKey = "dbScope"
)

// GetScope retrieves the request-scoped database connection from context.
// Returns nil and false if not present.
func GetScope(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(ScopeKey).(*Scope)
	return scope, ok && scope != nil && scope.Conn != nil
}

// SetScope stores the request-scoped database connection in context.
func SetScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, ScopeKey, scope)
}

// ScopeFunc acquires a scoped connection and returns a context carrying it.
// The cleanup function MUST be called when the work is done.
type ScopeFunc func(ctx context.Context) (context.Context, func(), error)

// NewScopeFunc creates a ScopeFunc backed by the given pool.
func NewScopeFunc(db *DB) ScopeFunc {
	return func(ctx context.Context) (context.Context, func(), error) {
		scope, err := db.Acquire(ctx)
		if err != nil {
			return nil, nil, err
		}
		return SetScope(ctx, scope), scope.Close, nil
	}
}
