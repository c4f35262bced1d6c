package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/temcen/quickrec/internal/catalog"
)

// Model is the immutable snapshot every request reads from. It is built once at
// startup and never mutated; a failed build yields a Model whose Ready reports false.
type Model struct {
	BuildID      uuid.UUID
	BuiltAt      time.Time
	Catalog      *catalog.Store
	Interactions *catalog.InteractionLog
	Similarity   *SimilarityIndex
	Popularity   *PopularityRanking

	err error
}

// UnavailableModel records a fatal build failure.
func UnavailableModel(err error) *Model {
	return &Model{BuildID: uuid.New(), BuiltAt: time.Now(), err: err}
}

func (m *Model) Ready() bool {
	return m != nil && m.err == nil
}

// Err returns the build failure, or nil for a ready model.
func (m *Model) Err() error {
	if m == nil {
		return ErrNotInitialized
	}
	return m.err
}

func (m *Model) State() ModelState {
	if !m.Ready() {
		return StateUnavailable
	}
	if !m.Similarity.Ready() || m.Popularity.State() != StateReady {
		return StateDegraded
	}
	return StateReady
}
