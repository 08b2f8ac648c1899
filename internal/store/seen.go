// Package store holds the two durable sets the pipeline depends on: the
// seen-offer ids and the subscriber chat ids. Each store owns one JSON-array
// file. Loads degrade to an empty set when the file is missing or corrupt;
// writes are whole-file rewrites where the last successful write wins.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"mkowalczyk/olxwatch/logger"
	"mkowalczyk/olxwatch/pkg/errors"
)

// SeenStore is the durable, append-only set of offer ids already notified
type SeenStore struct {
	mu   sync.Mutex
	path string
	ids  map[string]struct{}
	// order keeps the file stable and append-only across rewrites
	order []string
	log   *logger.Logger
}

// NewSeenStore creates a seen store backed by the JSON file at path and
// loads its current contents.
func NewSeenStore(path string) *SeenStore {
	s := &SeenStore{
		path: path,
		ids:  make(map[string]struct{}),
		log:  logger.ForStore("seen"),
	}
	s.load()
	return s
}

// load reads the backing file. A missing or unreadable file degrades to an
// empty set with a warning, never a startup failure.
func (s *SeenStore) load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("Failed to read seen file, starting empty")
		}
		return
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("Corrupt seen file, starting empty")
		return
	}

	for _, id := range ids {
		if _, ok := s.ids[id]; ok {
			continue
		}
		s.ids[id] = struct{}{}
		s.order = append(s.order, id)
	}
}

// IsSeen reports whether the offer id was already notified
func (s *SeenStore) IsSeen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// MarkSeen adds the ids to the set and persists the whole set once.
// Already-present ids are not duplicated; marking the same batch twice is a
// no-op that skips the write.
func (s *SeenStore) MarkSeen(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, id := range ids {
		if _, ok := s.ids[id]; ok {
			continue
		}
		s.ids[id] = struct{}{}
		s.order = append(s.order, id)
		changed = true
	}

	if !changed {
		return nil
	}
	return s.persistLocked()
}

// Count returns the number of seen offer ids
func (s *SeenStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func (s *SeenStore) persistLocked() error {
	if err := writeJSONFile(s.path, s.order); err != nil {
		return errors.NewPersistence("seen", "failed to persist seen file", err)
	}
	return nil
}

// writeJSONFile rewrites path with the JSON serialization of v. A temp file
// plus rename keeps the common crash case from leaving a half-written file.
func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
