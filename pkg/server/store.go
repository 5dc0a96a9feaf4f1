package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/cover-letter/pkg/coverletter"
	"github.com/nikogura/cover-letter/pkg/letter"
	"github.com/patrickmn/go-cache"
)

// StoredDraft is a generated letter kept for review between requests.
type StoredDraft struct {
	ID string `json:"id"`
	coverletter.Draft
	UpdatedAt time.Time `json:"updated_at"`
}

// DraftStore keeps drafts in memory until they expire. Values are replaced
// wholesale and never mutated in place.
type DraftStore struct {
	cache *cache.Cache
}

// NewDraftStore creates a store whose entries live for ttl.
func NewDraftStore(ttl time.Duration) (store *DraftStore) {
	store = &DraftStore{
		cache: cache.New(ttl, 2*ttl),
	}
	return store
}

// Save stores draft under a new random id.
func (s *DraftStore) Save(draft coverletter.Draft) (stored StoredDraft) {
	stored = StoredDraft{
		ID:        uuid.NewString(),
		Draft:     draft,
		UpdatedAt: draft.GeneratedAt,
	}
	s.cache.SetDefault(stored.ID, stored)
	return stored
}

// Get returns the draft with the given id.
func (s *DraftStore) Get(id string) (stored StoredDraft, ok bool) {
	var value interface{}
	value, ok = s.cache.Get(id)
	if !ok {
		return stored, ok
	}
	stored, ok = value.(StoredDraft)
	return stored, ok
}

// Replace swaps the letter text of an existing draft and restarts its expiry.
// Company and candidate are read again from the new header.
func (s *DraftStore) Replace(id, letterText string, now time.Time) (stored StoredDraft, ok bool) {
	stored, ok = s.Get(id)
	if !ok {
		return stored, ok
	}

	stored.Letter = letterText
	stored.Company = letter.ExtractCompanyName(letterText)
	stored.Candidate = letter.ExtractCandidateName(letterText)
	stored.UpdatedAt = now

	// id may alias a request buffer; the stored copy owns its bytes.
	s.cache.SetDefault(stored.ID, stored)
	return stored, ok
}

// Delete removes a draft, reporting whether it existed.
func (s *DraftStore) Delete(id string) (ok bool) {
	_, ok = s.cache.Get(id)
	if ok {
		s.cache.Delete(id)
	}
	return ok
}

// Count reports how many unexpired drafts are held.
func (s *DraftStore) Count() (n int) {
	n = s.cache.ItemCount()
	return n
}
