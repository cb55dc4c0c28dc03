package snapshots

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrNoPlays is returned when an archived game holds no plays.
var ErrNoPlays = errors.New("no archived plays")

// Store defines how archived plays are loaded.
type Store interface {
	LoadPlay(gameID string, play int) ([]byte, error)
	LoadLatest(gameID string) (int, error)
}

// FSStore loads archived plays from the filesystem.
type FSStore struct {
	basePath string
}

// NewFSStore constructs an FS-backed archive store rooted at basePath.
func NewFSStore(basePath string) *FSStore {
	return &FSStore{basePath: basePath}
}

// LoadPlay reads the raw payload stored for a play. A missing file wraps os.ErrNotExist.
func (s *FSStore) LoadPlay(gameID string, play int) ([]byte, error) {
	if err := s.check(gameID); err != nil {
		return nil, err
	}
	return os.ReadFile(PlayPath(s.basePath, gameID, play))
}

// LoadLatest returns the recorded latest index, or the highest archived play when the
// index file is missing.
func (s *FSStore) LoadLatest(gameID string) (int, error) {
	if err := s.check(gameID); err != nil {
		return 0, err
	}
	data, err := os.ReadFile(LatestPath(s.basePath, gameID))
	if err == nil {
		n, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
		if convErr != nil {
			return 0, fmt.Errorf("parse latest index: %w", convErr)
		}
		return n, nil
	}
	if !os.IsNotExist(err) {
		return 0, err
	}
	plays, err := s.ListPlays(gameID)
	if err != nil {
		return 0, err
	}
	if len(plays) == 0 {
		return 0, ErrNoPlays
	}
	return plays[len(plays)-1], nil
}

// ListPlays returns the archived play indexes in ascending order.
func (s *FSStore) ListPlays(gameID string) ([]int, error) {
	if err := s.check(gameID); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(GameDir(s.basePath, gameID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var plays []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "play") || !strings.HasSuffix(name, ".json") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "play"), ".json"))
		if err != nil {
			continue
		}
		plays = append(plays, n)
	}
	sort.Ints(plays)
	return plays, nil
}

func (s *FSStore) check(gameID string) error {
	if s == nil {
		return errors.New("snapshot store not configured")
	}
	if gameID == "" {
		return errors.New("game id required")
	}
	return nil
}
