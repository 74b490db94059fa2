package application

import (
	"time"
)

type Status string

// Statuses
const (
	StatusPending  Status = "Pending"
	StatusAccepted Status = "Accepted"
	StatusRejected Status = "Rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Queryable fields, as stored.
const (
	FieldEventID   = "eventId"
	FieldUserEmail = "userEmail"
)

type Application struct {
	ID        string    `json:"id" firestore:"id" bson:"_id"`
	EventID   string    `json:"eventId" firestore:"eventId" bson:"eventId"`
	EventName string    `json:"eventName" firestore:"eventName" bson:"eventName"`
	UserEmail string    `json:"userEmail" firestore:"userEmail" bson:"userEmail"`
	Status    Status    `json:"status" firestore:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"` // UTC
}

// Key builds the application document key: one application per user and event.
func Key(userEmail, eventID string) string {
	return userEmail + "_" + eventID
}

// StatusUpdate is the decision of an event admin on an application.
type StatusUpdate struct {
	Status Status `json:"status" validate:"required,oneof=Accepted Rejected"`
}
