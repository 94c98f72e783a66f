package lesson

import (
	"context"

	"sqnportal/internal/adapters/storage"
	domain "sqnportal/internal/domain/lesson"
)

// Store persists lessons, lesson assignments, and lesson resources.
type Store interface {
	// Lesson CRUD
	Save(ctx context.Context, l domain.Lesson) error
	GetByID(ctx context.Context, id string) (domain.Lesson, error)
	List(ctx context.Context) ([]domain.Lesson, error)
	ListByAssignee(ctx context.Context, userID string) ([]domain.Lesson, error)
	Delete(ctx context.Context, id string) error

	// Assignments
	SaveAssignment(ctx context.Context, a domain.Assignment) error
	ListAssignments(ctx context.Context, lessonID string) ([]domain.Assignment, error)
	DeleteAssignment(ctx context.Context, lessonID, userID string) error

	// Resources
	SaveResource(ctx context.Context, r domain.Resource) error
	ListResources(ctx context.Context, lessonID string) ([]domain.Resource, error)
	GetResource(ctx context.Context, id string) (domain.Resource, error)
	DeleteResource(ctx context.Context, id string) error
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLDB defines the database interface needed by the store.
type SQLDB interface {
	storage.SQLDB
}
