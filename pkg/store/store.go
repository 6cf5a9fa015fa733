// Package store persists pipeline runs so the API can serve previously
// computed layouts by ID.
//
// A run couples the aggregated graph with the layout computed from it and
// the options that produced both. The MongoDB backend serves server
// deployments; tests and single-binary setups use [MemoryStore].
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/layout"
)

// Run is a persisted pipeline execution.
type Run struct {
	ID        string    `json:"id" bson:"_id"`
	Address   string    `json:"address,omitempty" bson:"address,omitempty"`
	VizType   string    `json:"viz_type" bson:"viz_type"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Graph  entity.Graph  `json:"graph" bson:"graph"`
	Layout layout.Layout `json:"layout" bson:"layout"`
}

// NewRunID generates a unique run identifier.
func NewRunID() string { return uuid.NewString() }

// Store is the interface for run persistence backends.
type Store interface {
	// Save persists a run. If the run has no ID, one is assigned; the
	// stored run is returned.
	Save(ctx context.Context, run Run) (Run, error)

	// Get retrieves a run by ID. Returns [ErrRunNotFound] if absent.
	Get(ctx context.Context, id string) (Run, error)

	// List returns the most recent runs, newest first, up to limit.
	List(ctx context.Context, limit int) ([]Run, error)

	// Delete removes a run. Deleting a missing run is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close(ctx context.Context) error
}
