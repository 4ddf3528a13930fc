package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Actor is the authenticated caller of an operation. A zero Actor is anonymous.
type Actor struct {
	ID    primitive.ObjectID
	Role  Role
	Email string
}

func (a Actor) IsAnonymous() bool { return a.ID.IsZero() }

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsStaff reports whether the actor may moderate content.
func (a Actor) IsStaff() bool { return a.Role == RoleAdmin || a.Role == RoleManager }

// Owns reports whether the actor is ownerID or an admin.
func (a Actor) Owns(ownerID primitive.ObjectID) bool {
	return a.IsAdmin() || (!a.ID.IsZero() && a.ID == ownerID)
}

type actorKey struct{}

// WithActor stores the authenticated caller in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the caller stored in ctx, or the anonymous actor.
func ActorFrom(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}
