package progress

import "sync"

// Code is the coarse processing state of one video.
type Code int

const (
	Started   Code = 0
	Fetched   Code = 50
	Processed Code = 75
	Complete  Code = 100
	Failed    Code = -1
)

// Store holds the latest progress code per video ID. Entries live for the
// lifetime of the process.
type Store struct {
	mu    sync.RWMutex
	codes map[string]Code

	onSet func(Code)
}

func NewStore() *Store {
	return &Store{codes: make(map[string]Code)}
}

// OnSet registers a hook called after every update. Set it before the store is shared.
func (s *Store) OnSet(fn func(Code)) { s.onSet = fn }

func (s *Store) Set(videoID string, c Code) {
	s.mu.Lock()
	s.codes[videoID] = c
	s.mu.Unlock()
	if s.onSet != nil {
		s.onSet(c)
	}
}

// Get returns the code for videoID, or Started when it was never recorded.
func (s *Store) Get(videoID string) Code {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.codes[videoID]
}

// Snapshot returns the codes for ids in one consistent read.
func (s *Store) Snapshot(ids []string) map[string]Code {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Code, len(ids))
	for _, id := range ids {
		out[id] = s.codes[id]
	}
	return out
}
