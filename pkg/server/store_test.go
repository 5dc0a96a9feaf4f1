package server

import (
	"testing"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"github.com/nikogura/cover-letter/pkg/coverletter"
)

func TestDraftStoreSaveGet(t *testing.T) {
	store := NewDraftStore(time.Minute)

	stored := store.Save(coverletter.Draft{Letter: "Hello", Company: "Acme Corp"})
	if _, err := uuid.Parse(stored.ID); err != nil {
		t.Errorf("Expected a uuid id, got %q", stored.ID)
	}

	got, ok := store.Get(stored.ID)
	if !ok {
		t.Fatal("Expected draft to be found")
	}

	if got.Letter != "Hello" || got.Company != "Acme Corp" {
		t.Errorf("Unexpected draft: %+v", got)
	}

	if store.Count() != 1 {
		t.Errorf("Expected 1 draft, got %d", store.Count())
	}
}

func TestDraftStoreReplaceKeepsKeyWhenIDBufferIsReused(t *testing.T) {
	store := NewDraftStore(time.Minute)
	stored := store.Save(coverletter.Draft{Letter: "Hello"})

	// A request-scoped id shares its bytes with a buffer that is reused later.
	buf := []byte(stored.ID)
	id := unsafe.String(&buf[0], len(buf))

	_, ok := store.Replace(id, "Edited", time.Now())
	if !ok {
		t.Fatal("Expected replace to find the draft")
	}

	copy(buf, uuid.NewString())

	got, ok := store.Get(string([]byte(stored.ID)))
	if !ok {
		t.Fatal("Expected draft under its own id after the buffer was reused")
	}

	if got.Letter != "Edited" {
		t.Errorf("Expected edited letter, got %q", got.Letter)
	}

	if store.Count() != 1 {
		t.Errorf("Expected 1 draft, got %d", store.Count())
	}
}

func TestDraftStoreReplaceRereadsHeader(t *testing.T) {
	store := NewDraftStore(time.Minute)
	stored := store.Save(coverletter.Draft{
		Letter:    "Jane Doe\n\nDate: March 03, 2026\n\nAcme Corp",
		Company:   "Acme Corp",
		Candidate: "Jane Doe",
	})

	edited := "**john smith**\n\nDate: March 04, 2026\n\nGlobex Inc\n\nDear Hiring Manager,"
	updated, ok := store.Replace(stored.ID, edited, time.Now())
	if !ok {
		t.Fatal("Expected replace to find the draft")
	}

	if updated.Company != "Globex Inc" {
		t.Errorf("Expected company 'Globex Inc', got '%s'", updated.Company)
	}

	if updated.Candidate != "John Smith" {
		t.Errorf("Expected candidate 'John Smith', got '%s'", updated.Candidate)
	}

	got, _ := store.Get(stored.ID)
	if got.Company != "Globex Inc" {
		t.Errorf("Expected stored company 'Globex Inc', got '%s'", got.Company)
	}
}

func TestDraftStoreReplaceUnknown(t *testing.T) {
	store := NewDraftStore(time.Minute)

	_, ok := store.Replace("missing", "Hello", time.Now())
	if ok {
		t.Error("Expected replace of unknown draft to fail")
	}

	if store.Count() != 0 {
		t.Errorf("Expected no drafts, got %d", store.Count())
	}
}

func TestDraftStoreDelete(t *testing.T) {
	store := NewDraftStore(time.Minute)
	stored := store.Save(coverletter.Draft{Letter: "Hello"})

	if !store.Delete(stored.ID) {
		t.Error("Expected delete to report an existing draft")
	}

	if store.Delete(stored.ID) {
		t.Error("Expected second delete to report a missing draft")
	}
}
