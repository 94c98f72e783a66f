package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category represents the area of the portal an audit event belongs to.
type Category string

const (
	CategoryUser       Category = "user"
	CategoryDuty       Category = "duty"
	CategoryLesson     Category = "lesson"
	CategoryAbsence    Category = "absence"
	CategoryUniform    Category = "uniform"
	CategoryAssessment Category = "assessment"
	CategorySecurity   Category = "security"
)

// Action represents the action that occurred.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionLogin  Action = "login"
	ActionLogout Action = "logout"
	ActionExport Action = "export"
)

// Event represents a single audit log entry. Events record who did what to
// which resource; they are written by orchestrators after a change commits.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	ActorID      string    `json:"actorId"`
	ActorName    string    `json:"actorName"`
	ActorRole    string    `json:"actorRole"`
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId"`
	Description  string    `json:"description"`
}

// NewEvent creates a new audit event with the current timestamp.
// PRE: actorID is non-empty
// POST: Returns an Event with the current timestamp and provided fields
func NewEvent(actorID, actorName, actorRole string, category Category, action Action) Event {
	return Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Category:  category,
		Action:    action,
		ActorID:   actorID,
		ActorName: actorName,
		ActorRole: actorRole,
	}
}

// WithResource sets resource information.
// PRE: resourceType and resourceID are non-empty
// POST: Event resource fields are populated
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the event description.
// PRE: description is non-empty
// POST: Event description is set
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}
