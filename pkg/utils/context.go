package utils

import (
	"context"

	"local-services/internal/data/entity"
)

type contextKey string

const actorKey contextKey = "actor"

// SetActorContext stores the authenticated actor for downstream handlers.
func SetActorContext(ctx context.Context, actor entity.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActorFromContext returns the authenticated actor set by the auth middleware.
func GetActorFromContext(ctx context.Context) (entity.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(entity.Actor)
	return actor, ok
}
