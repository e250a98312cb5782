package service

import (
	"encoding/json"
	"errors"
	"sync"

	"tally/internal/modules/draft/domain"
	draftout "tally/internal/modules/draft/port/out"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/logging"
)

// DraftStore caches reflection fields per session key. Medium failures are
// logged and swallowed so the app keeps working without autosave.
type DraftStore struct {
	mu     sync.Mutex
	medium draftout.Medium
}

func NewDraftStore(medium draftout.Medium) *DraftStore {
	return &DraftStore{medium: medium}
}

func (s *DraftStore) Get(key string) (domain.Fields, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(key)
}

func (s *DraftStore) Set(key string, field domain.Field, value string) {
	if err := field.Validate(); err != nil {
		logging.Logger.Warn("draft field rejected", "key", key, "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fields, ok := s.load(key)
	if !ok {
		fields = domain.Fields{}
	}
	fields[field] = value
	payload, err := json.Marshal(fields)
	if err != nil {
		s.degraded("encode", key, err)
		return
	}
	if s.medium == nil {
		return
	}
	if err := s.medium.Write(key, string(payload)); err != nil {
		s.degraded("write", key, err)
	}
}

func (s *DraftStore) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.medium == nil {
		return
	}
	if err := s.medium.Remove(key); err != nil {
		s.degraded("remove", key, err)
	}
}

func (s *DraftStore) load(key string) (domain.Fields, bool) {
	if s.medium == nil {
		return nil, false
	}
	raw, ok, err := s.medium.Read(key)
	if err != nil {
		s.degraded("read", key, err)
		return nil, false
	}
	if !ok || raw == "" {
		return nil, false
	}
	fields := domain.Fields{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		s.degraded("decode", key, err)
		return nil, false
	}
	return fields, true
}

func (s *DraftStore) degraded(op, key string, err error) {
	logging.Logger.Warn("draft store degraded",
		"op", op,
		"key", key,
		"error", errors.Join(apperrors.ErrDegradedStorage, err),
	)
}
