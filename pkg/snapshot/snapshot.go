// Package snapshot archives transformed graphs per knowledge base so the
// server can answer repeated requests and the CLI can diff runs.
package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/graph"
)

// Source records where a snapshot's payload came from.
type Source string

const (
	SourceAPI  Source = "api"
	SourceFile Source = "file"
	SourceHTTP Source = "http"
)

// Snapshot is one transformed graph.
type Snapshot struct {
	ID          string             `json:"id"`
	KnowledgeID string             `json:"knowledge_id,omitempty"`
	Source      Source             `json:"source"`
	CreatedAt   time.Time          `json:"created_at"`
	Stats       graph.Stats        `json:"stats"`
	Graph       *graph.RenderGraph `json:"graph,omitempty"`
}

// New stamps g with a fresh id, the current time and its stats.
func New(kbID string, src Source, g *graph.RenderGraph) *Snapshot {
	return &Snapshot{
		ID:          uuid.NewString(),
		KnowledgeID: kbID,
		Source:      src,
		CreatedAt:   time.Now().UTC(),
		Stats:       g.Stats(),
		Graph:       g,
	}
}

// Repository stores snapshots.
type Repository interface {
	Save(ctx context.Context, s *Snapshot) error
	Get(ctx context.Context, id string) (*Snapshot, error)
	// Latest returns the newest snapshot of a knowledge base.
	Latest(ctx context.Context, kbID string) (*Snapshot, error)
	// List returns up to limit snapshots of kbID, newest first, without
	// their graphs. An empty kbID lists every knowledge base.
	List(ctx context.Context, kbID string, limit int) ([]*Snapshot, error)
	Delete(ctx context.Context, id string) error
	Close(ctx context.Context) error
}

// DefaultListLimit applies when List is called with limit <= 0.
const DefaultListLimit = 50

func notFound(what string) error {
	return errors.New(errors.ErrCodeNotFound, "snapshot %s not found", what)
}

func validate(s *Snapshot) error {
	if s == nil || s.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot needs an id")
	}
	if s.Graph == nil {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot %s has no graph", s.ID)
	}
	return nil
}
