package page

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Storage is a tab-scoped string store shared by every page loaded in the
// same tab, like window.sessionStorage.
type Storage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewStorage() *Storage {
	return &Storage{values: make(map[string]string)}
}

func (s *Storage) GetItem(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Storage) SetItem(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *Storage) RemoveItem(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// list decodes a JSON array stored under key. Missing or malformed values
// read as an empty list.
func (s *Storage) list(key string) []string {
	raw, ok := s.GetItem(key)
	if !ok {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}

func (s *Storage) setList(key string, list []string) {
	if list == nil {
		list = []string{}
	}
	encoded, err := json.Marshal(list)
	if err != nil {
		// []string always marshals
		panic(err)
	}
	s.SetItem(key, string(encoded))
}

// MarshalJSON lets a tab's storage outlive the process, e.g. between CLI runs.
func (s *Storage) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.values)
}

func (s *Storage) UnmarshalJSON(data []byte) error {
	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("invalid storage snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
	return nil
}
