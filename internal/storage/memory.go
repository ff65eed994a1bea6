package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"spikejump/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	genomes     map[string]model.Genome
	sessions    map[string]model.SessionRecord
	scapes      map[string]model.ScapeSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.genomes = make(map[string]model.Genome)
	s.sessions = make(map[string]model.SessionRecord)
	s.scapes = make(map[string]model.ScapeSummary)
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, genome model.Genome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	if err := checkVersion(genome.VersionedRecord); err != nil {
		return err
	}
	s.genomes[genome.ID] = genome
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, id string) (model.Genome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	genome, ok := s.genomes[id]
	return genome, ok, nil
}

func (s *MemoryStore) SaveSessionRecord(_ context.Context, record model.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return err
	}
	record.Agents = append([]model.AgentResult(nil), record.Agents...)
	s.sessions[record.ID] = record
	return nil
}

func (s *MemoryStore) GetSessionRecord(_ context.Context, id string) (model.SessionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.sessions[id]
	return record, ok, nil
}

func (s *MemoryStore) ListSessionRecords(_ context.Context, runID string) ([]model.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SessionRecord, 0, len(s.sessions))
	for _, record := range s.sessions {
		if runID != "" && record.RunID != runID {
			continue
		}
		out = append(out, record)
	}
	sortSessionRecords(out)
	return out, nil
}

func (s *MemoryStore) SaveScapeSummary(_ context.Context, summary model.ScapeSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return err
	}
	s.scapes[summary.Name] = summary
	return nil
}

func (s *MemoryStore) GetScapeSummary(_ context.Context, name string) (model.ScapeSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.scapes[name]
	return summary, ok, nil
}

func sortSessionRecords(records []model.SessionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.RunID != b.RunID {
			return a.RunID < b.RunID
		}
		return a.Iteration < b.Iteration
	})
}
