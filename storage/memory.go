package storage

import (
	"context"
	"sync"

	"github.com/Dosada05/tournament-client/models"
	"github.com/Dosada05/tournament-client/utils"
	"github.com/Dosada05/tournament-client/voting"
)

// MemoryStore is a process-local StateStore. State is lost on restart.
type MemoryStore struct {
	mu        sync.RWMutex
	markers   map[string]models.VoteMarker
	summaries map[int64]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		markers:   make(map[string]models.VoteMarker),
		summaries: make(map[int64]string),
	}
}

func (s *MemoryStore) GetVote(_ context.Context, tournamentID int64, voter string) (*models.VoteMarker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.markers[utils.VoteMarkerKey(tournamentID, voter)]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *MemoryStore) PutVote(_ context.Context, marker models.VoteMarker) error {
	key := utils.VoteMarkerKey(marker.TournamentID, marker.Voter)
	marker.Voter = utils.HashIdentity(marker.Voter)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.markers[key]; exists {
		return voting.ErrMarkerExists
	}
	s.markers[key] = marker
	return nil
}

func (s *MemoryStore) GetSummary(_ context.Context, tournamentID int64) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.summaries[tournamentID]
	return text, ok, nil
}

func (s *MemoryStore) PutSummary(_ context.Context, tournamentID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[tournamentID] = text
	return nil
}
