package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// Request is the single domain entity: one service request submitted by a
// requester and handled by the team's SPOC. Category is a free-form label
// (Tea, Coffee, WiFi, Other, ...); the server does not enforce the set.
// TeamID/SpocID come from a static directory and are not validated against
// it at write time.
type Request struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Requester string             `bson:"requester,omitempty" json:"requester,omitempty"`
	Category  string             `bson:"category,omitempty" json:"category,omitempty"`
	Details   string             `bson:"details,omitempty" json:"details,omitempty"`
	Location  string             `bson:"location" json:"location"`
	Quantity  string             `bson:"quantity,omitempty" json:"quantity,omitempty"`
	TeamID    string             `bson:"team_id,omitempty" json:"teamId,omitempty"`
	SpocID    string             `bson:"spoc_id,omitempty" json:"spocId,omitempty"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
