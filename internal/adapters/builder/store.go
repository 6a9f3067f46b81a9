package builder

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baris/shipyard/internal/core/domain"
)

// buildStore tracks build executions in memory. The tool keeps no persisted
// state; records live for the lifetime of the process.
type buildStore struct {
	mu     sync.RWMutex
	builds map[string]domain.Build
	order  []string
}

func newBuildStore() *buildStore {
	return &buildStore{builds: make(map[string]domain.Build)}
}

func (s *buildStore) begin(spec domain.BuildSpec) domain.Build {
	b := domain.Build{
		ID:        uuid.NewString(),
		Spec:      spec,
		Status:    domain.BuildStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.builds[b.ID] = b
	s.order = append(s.order, b.ID)
	s.mu.Unlock()
	return b
}

// finish closes out a build. A nil err records the image tag; a non-nil err
// records the failure and leaves Image empty, so a failed build never claims
// an artifact.
func (s *buildStore) finish(id, image string, err error) domain.Build {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.builds[id]
	b.FinishedAt = time.Now().UTC()
	if err != nil {
		b.Status = domain.BuildStatusFailed
		b.Error = err.Error()
	} else {
		b.Status = domain.BuildStatusSucceeded
		b.Image = image
	}
	s.builds[id] = b
	return b
}

func (s *buildStore) get(id string) (domain.Build, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.builds[id]
	return b, ok
}

func (s *buildStore) list() []domain.Build {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Build, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.builds[s.order[i]])
	}
	return out
}
