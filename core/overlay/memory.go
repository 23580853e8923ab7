package overlay

import (
	"context"
	"sync"
)

type memoryStore struct {
	sync.RWMutex
	table map[Namespace]map[string]map[string]Entry // {ns: {studentID: {subject: Entry}}}
}

var _ Store = (*memoryStore)(nil) // interface compliance check

// NewMemoryStore returns a process-local Store.
func NewMemoryStore() Store {
	return &memoryStore{table: make(map[Namespace]map[string]map[string]Entry)}
}

func (s *memoryStore) Load(_ context.Context, ns Namespace, studentID string) (map[string]Entry, error) {
	s.RLock()
	defer s.RUnlock()

	entries := make(map[string]Entry, len(s.table[ns][studentID]))
	for sub, e := range s.table[ns][studentID] {
		entries[sub] = Entry{}.Merge(e) // copy pointers
	}
	return entries, nil
}

func (s *memoryStore) Put(_ context.Context, ns Namespace, studentID, subject string, e Entry) error {
	s.Lock()
	defer s.Unlock()

	students, ok := s.table[ns]
	if !ok {
		students = make(map[string]map[string]Entry)
		s.table[ns] = students
	}
	subjects, ok := students[studentID]
	if !ok {
		subjects = make(map[string]Entry)
		students[studentID] = subjects
	}
	subjects[subject] = Entry{}.Merge(e)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, ns Namespace, studentID, subject string) error {
	s.Lock()
	defer s.Unlock()

	if subjects, ok := s.table[ns][studentID]; ok {
		delete(subjects, subject)
		if len(subjects) == 0 {
			delete(s.table[ns], studentID)
		}
	}
	return nil
}
