// Package store persists diagram documents for the gallery.
//
// This package defines the Store interface with implementations for
// different backends:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for the API service
//
// A stored document carries the diagram definition and, optionally, its
// last computed geometry so the gallery can show previews without
// re-running the layout engine.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dihm/leveldiagram/pkg/diagram"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned when saving would reuse an existing
	// document name for the same owner.
	ErrDuplicateName = errors.New("duplicate document name")
)

// Document is a saved diagram with optional cached geometry.
type Document struct {
	ID        uuid.UUID        `json:"id" bson:"_id"`
	Name      string           `json:"name" bson:"name"`
	Owner     string           `json:"owner,omitempty" bson:"owner,omitempty"`
	Diagram   diagram.Document `json:"diagram" bson:"diagram"`
	Geometry  []byte           `json:"geometry,omitempty" bson:"geometry,omitempty"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" bson:"updated_at"`
}

// New creates a document for a diagram with a fresh ID and timestamps.
func New(name, owner string, doc diagram.Document) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:        uuid.New(),
		Name:      name,
		Owner:     owner,
		Diagram:   doc,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store is the interface for document storage backends.
type Store interface {
	// Get retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*Document, error)

	// Put stores a document, inserting or replacing by ID. UpdatedAt is
	// refreshed on every call.
	Put(ctx context.Context, doc *Document) error

	// Delete removes a document.
	// Returns ErrNotFound if the document doesn't exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns all documents for an owner, newest first. An empty
	// owner lists unowned documents.
	List(ctx context.Context, owner string) ([]*Document, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
