package store

import (
	"encoding/json"
	"os"
	"sync"

	"mkowalczyk/olxwatch/logger"
	"mkowalczyk/olxwatch/pkg/errors"
)

// SubscriberStore is the durable set of Telegram chat ids to notify.
// Mutations are rare and persisted immediately, unlike the seen set which
// is batched per cycle.
type SubscriberStore struct {
	mu      sync.Mutex
	path    string
	chatIDs []int64
	log     *logger.Logger
}

// NewSubscriberStore creates a subscriber store backed by the JSON file at
// path and loads its current contents.
func NewSubscriberStore(path string) *SubscriberStore {
	s := &SubscriberStore{
		path: path,
		log:  logger.ForStore("subscribers"),
	}
	s.load()
	return s
}

func (s *SubscriberStore) load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("Failed to read subscribers file, starting empty")
		}
		return
	}

	if err := json.Unmarshal(data, &s.chatIDs); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("Corrupt subscribers file, starting empty")
		s.chatIDs = nil
	}
}

// Add registers a chat id. Returns false when it was already subscribed;
// the add is idempotent and only a real insertion is persisted.
func (s *SubscriberStore) Add(chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.chatIDs {
		if id == chatID {
			return false, nil
		}
	}
	s.chatIDs = append(s.chatIDs, chatID)
	return true, s.persistLocked()
}

// Remove unregisters a chat id. Returns false when it was not subscribed.
func (s *SubscriberStore) Remove(chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range s.chatIDs {
		if id == chatID {
			s.chatIDs = append(s.chatIDs[:i], s.chatIDs[i+1:]...)
			return true, s.persistLocked()
		}
	}
	return false, nil
}

// List returns a copy of the current chat ids
func (s *SubscriberStore) List() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.chatIDs))
	copy(out, s.chatIDs)
	return out
}

// Count returns the number of subscribers
func (s *SubscriberStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chatIDs)
}

func (s *SubscriberStore) persistLocked() error {
	ids := s.chatIDs
	if ids == nil {
		// An emptied store still serializes as an array, not null
		ids = []int64{}
	}
	if err := writeJSONFile(s.path, ids); err != nil {
		return errors.NewPersistence("subscribers", "failed to persist subscribers file", err)
	}
	return nil
}
