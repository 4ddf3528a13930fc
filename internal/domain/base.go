// Package domain holds the marketplace entities, their allow-lists, the error
// taxonomy and the repository ports implemented by the adapters.
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Base carries the identity and timestamps every document has.
type Base struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (b *Base) GetID() primitive.ObjectID { return b.ID }

func (b *Base) SetID(id primitive.ObjectID) { b.ID = id }

// Stamp sets CreatedAt on first write and UpdatedAt on every write.
func (b *Base) Stamp(now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// Ref is a populated reference: the selected fields of a related document.
type Ref map[string]interface{}
