package session

import (
	"context"

	"caseguard/internal/model"
)

type contextKey struct{}

// State is what the session monitor hands to downstream handlers.
type State struct {
	Claims    *model.AccessClaims
	Principal model.Principal
	Action    Action
}

func WithState(ctx context.Context, state State) context.Context {
	return context.WithValue(ctx, contextKey{}, state)
}

func FromContext(ctx context.Context) (State, bool) {
	state, ok := ctx.Value(contextKey{}).(State)
	return state, ok
}

// PrincipalID returns the authenticated principal id, or 0.
func PrincipalID(ctx context.Context) int64 {
	state, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return state.Principal.ID
}
