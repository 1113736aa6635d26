// Package store defines the course service's data access layer.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Course is a durable catalogue entry. CreatedBy records the admin subject
// that created it.
type Course struct {
	ID          string
	Code        string
	Title       string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store is the root data access interface for the course service.
type Store interface {
	Courses() Courses

	ApplyMigrations() error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Courses interface {
	// CreateCourse inserts a new course (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the course code is taken.
	CreateCourse(ctx context.Context, c Course) error

	// GetCourse returns a course by id.
	GetCourse(ctx context.Context, id string) (Course, error)

	// ListCourses returns all courses, newest first.
	ListCourses(ctx context.Context) ([]Course, error)

	// DeleteCourse removes a course by id. Returns ErrNotFound when no row
	// matched.
	DeleteCourse(ctx context.Context, id string) error
}
