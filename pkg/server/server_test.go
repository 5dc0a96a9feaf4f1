package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/cover-letter/pkg/config"
	"github.com/nikogura/cover-letter/pkg/coverletter"
	"github.com/nikogura/cover-letter/pkg/renderer"
	"github.com/pkg/errors"
)

const sampleLetter = "**Jane Doe**\njane@example.com\n\nDate: March 03, 2026\n\nAcme Corp\n\nDear Hiring Manager,\n\nI am excited to apply.\n\nSincerely,\nJane Doe"

type fakeCompleter struct {
	calls int
	text  string
	err   error
}

func (f *fakeCompleter) Complete(_ context.Context, _ string) (text string, err error) {
	f.calls++
	text = f.text
	err = f.err
	return text, err
}

func (f *fakeCompleter) Model() (model string) {
	model = "test-model"
	return model
}

func testConfig() (cfg config.ServerConfig) {
	cfg = config.ServerConfig{
		Addr:              ":0",
		MaxUploadBytes:    1 << 20,
		RequestsPerMinute: 100,
		DraftTTLMinutes:   5,
	}
	return cfg
}

func newTestServer(t *testing.T, completer *fakeCompleter, cfg config.ServerConfig) (s *Server) {
	t.Helper()

	r, err := renderer.New(renderer.DefaultOptions())
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := coverletter.NewGenerator(completer, r,
		coverletter.WithLogger(logger),
		coverletter.WithExtractor(func(data []byte) (text string, err error) {
			text = string(data)
			return text, err
		}),
	)

	s = New(gen, cfg, logger)
	return s
}

func multipartRequest(t *testing.T, filename string, resume []byte, fields map[string]string) (req *http.Request) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if filename != "" {
		part, err := writer.CreateFormFile("resume", filename)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		_, _ = part.Write(resume)
	}

	for key, value := range fields {
		err := writer.WriteField(key, value)
		if err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}

	err := writer.Close()
	if err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/letters", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, path string, payload interface{}) (req *http.Request) {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}

	req = httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func do(t *testing.T, s *Server, req *http.Request) (resp *http.Response, body []byte) {
	t.Helper()

	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	return resp, body
}

func decodeDraft(t *testing.T, body []byte) (stored StoredDraft) {
	t.Helper()

	err := json.Unmarshal(body, &stored)
	if err != nil {
		t.Fatalf("Failed to decode draft: %v (%s)", err, body)
	}
	return stored
}

func errorMessage(t *testing.T, body []byte) (message string) {
	t.Helper()

	var resp ErrorResponse
	err := json.Unmarshal(body, &resp)
	if err != nil {
		t.Fatalf("Failed to decode error: %v (%s)", err, body)
	}
	message = resp.Message
	return message
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeCompleter{}, testConfig())

	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var health map[string]interface{}
	err := json.Unmarshal(body, &health)
	if err != nil {
		t.Fatalf("Failed to decode health: %v", err)
	}

	if health["status"] != "ok" || health["model"] != "test-model" {
		t.Errorf("Unexpected health response: %s", body)
	}
}

func TestLetterLifecycle(t *testing.T) {
	completer := &fakeCompleter{text: sampleLetter}
	s := newTestServer(t, completer, testConfig())

	// Generate.
	req := multipartRequest(t, "resume.pdf", []byte("Jane Doe, Staff Engineer"), map[string]string{
		"job_description": "Senior SRE at Acme",
		"company_address": "1 Main St",
	})
	resp, body := do(t, s, req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", resp.StatusCode, body)
	}

	created := decodeDraft(t, body)
	if created.ID == "" {
		t.Fatal("Expected a draft id")
	}
	if created.Company != "Acme Corp" {
		t.Errorf("Expected company 'Acme Corp', got '%s'", created.Company)
	}
	if created.Letter == "" {
		t.Error("Expected letter text")
	}

	path := "/api/v1/letters/" + created.ID

	// Fetch.
	resp, body = do(t, s, httptest.NewRequest(http.MethodGet, path, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if decodeDraft(t, body).Letter != created.Letter {
		t.Error("Expected stored letter to match generated letter")
	}

	// Edit.
	edited := "Jane Doe\n\n\n\nDear Team,   \n\nThanks."
	resp, body = do(t, s, jsonRequest(t, http.MethodPut, path, LetterBody{Letter: edited}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}
	updated := decodeDraft(t, body)
	if updated.Letter != "Jane Doe\n\nDear Team,\n\nThanks." {
		t.Errorf("Expected sanitized edit, got %q", updated.Letter)
	}
	if updated.ID != created.ID {
		t.Errorf("Expected id to be kept, got %s", updated.ID)
	}

	// Finalize.
	resp, body = do(t, s, httptest.NewRequest(http.MethodGet, path+"/pdf", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}
	if resp.Header.Get("Content-Type") != "application/pdf" {
		t.Errorf("Expected application/pdf, got %s", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), `filename="cover_letter.pdf"`) {
		t.Errorf("Unexpected Content-Disposition: %s", resp.Header.Get("Content-Disposition"))
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Error("Expected PDF body")
	}

	// Start over.
	resp, _ = do(t, s, httptest.NewRequest(http.MethodDelete, path, nil))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}

	resp, _ = do(t, s, httptest.NewRequest(http.MethodGet, path, nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}

	if completer.calls != 1 {
		t.Errorf("Expected exactly one completion call, got %d", completer.calls)
	}
}

func TestUpdatedDraftSurvivesLaterRequests(t *testing.T) {
	s := newTestServer(t, &fakeCompleter{text: sampleLetter}, testConfig())

	req := multipartRequest(t, "resume.pdf", []byte("Jane Doe"), map[string]string{"job_description": "Engineer"})
	resp, body := do(t, s, req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", resp.StatusCode, body)
	}
	created := decodeDraft(t, body)

	edited := "Jane Doe\n\nDate: March 04, 2026\n\nGlobex Inc\n\nDear Team,"
	resp, body = do(t, s, jsonRequest(t, http.MethodPut, "/api/v1/letters/"+created.ID, LetterBody{Letter: edited}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}

	for i := 0; i < 50; i++ {
		do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/letters/"+uuid.NewString(), nil))
	}

	stored, ok := s.Drafts().Get(string([]byte(created.ID)))
	if !ok {
		t.Fatalf("Expected draft %s to be stored after later requests", created.ID)
	}

	if stored.Letter != edited {
		t.Errorf("Expected edited letter, got %q", stored.Letter)
	}

	if stored.Company != "Globex Inc" {
		t.Errorf("Expected company from edited header, got '%s'", stored.Company)
	}

	if s.Drafts().Count() != 1 {
		t.Errorf("Expected 1 draft, got %d", s.Drafts().Count())
	}

	resp, body = do(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/letters/"+created.ID+"/pdf", nil))
	if resp.StatusCode != http.StatusOK || !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Errorf("Expected PDF of edited draft, got %d", resp.StatusCode)
	}
}

func TestCreateLetterValidation(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		resume   []byte
		fields   map[string]string
	}{
		{
			name:     "empty job description",
			filename: "resume.pdf",
			resume:   []byte("Jane Doe"),
			fields:   map[string]string{"job_description": "   "},
		},
		{
			name:   "missing resume",
			fields: map[string]string{"job_description": "Engineer"},
		},
		{
			name:     "not a pdf",
			filename: "resume.docx",
			resume:   []byte("Jane Doe"),
			fields:   map[string]string{"job_description": "Engineer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{text: sampleLetter}
			s := newTestServer(t, completer, testConfig())

			resp, body := do(t, s, multipartRequest(t, tt.filename, tt.resume, tt.fields))
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", resp.StatusCode, body)
			}

			if errorMessage(t, body) == "" {
				t.Error("Expected an error message")
			}

			if completer.calls != 0 {
				t.Errorf("Expected no completion calls, got %d", completer.calls)
			}
		})
	}
}

func TestCreateLetterGenerationFailure(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("upstream unavailable")}
	s := newTestServer(t, completer, testConfig())

	req := multipartRequest(t, "resume.pdf", []byte("Jane Doe"), map[string]string{"job_description": "Engineer"})
	resp, body := do(t, s, req)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d: %s", resp.StatusCode, body)
	}

	if !strings.Contains(errorMessage(t, body), "upstream unavailable") {
		t.Errorf("Expected cause in message, got %s", body)
	}

	if s.Drafts().Count() != 0 {
		t.Errorf("Expected no stored drafts, got %d", s.Drafts().Count())
	}
}

func TestCreateLetterRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RequestsPerMinute = 1
	completer := &fakeCompleter{text: sampleLetter}
	s := newTestServer(t, completer, cfg)

	fields := map[string]string{"job_description": "Engineer"}

	resp, body := do(t, s, multipartRequest(t, "resume.pdf", []byte("Jane Doe"), fields))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", resp.StatusCode, body)
	}

	resp, _ = do(t, s, multipartRequest(t, "resume.pdf", []byte("Jane Doe"), fields))
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", resp.StatusCode)
	}

	if completer.calls != 1 {
		t.Errorf("Expected one completion call, got %d", completer.calls)
	}
}

func TestUnknownDraft(t *testing.T) {
	s := newTestServer(t, &fakeCompleter{}, testConfig())
	path := "/api/v1/letters/does-not-exist"

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, path, nil),
		httptest.NewRequest(http.MethodGet, path+"/pdf", nil),
		httptest.NewRequest(http.MethodDelete, path, nil),
		jsonRequest(t, http.MethodPut, path, LetterBody{Letter: "Hello"}),
	}

	for _, req := range requests {
		resp, body := do(t, s, req)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", req.Method, req.URL.Path, resp.StatusCode)
		}
		if errorMessage(t, body) != "draft not found" {
			t.Errorf("%s %s: unexpected body %s", req.Method, req.URL.Path, body)
		}
	}
}

func TestUpdateLetterEmpty(t *testing.T) {
	s := newTestServer(t, &fakeCompleter{}, testConfig())
	stored := s.Drafts().Save(coverletter.Draft{Letter: "Hello", GeneratedAt: time.Now()})

	resp, _ := do(t, s, jsonRequest(t, http.MethodPut, "/api/v1/letters/"+stored.ID, LetterBody{Letter: " \n "}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}

	current, _ := s.Drafts().Get(stored.ID)
	if current.Letter != "Hello" {
		t.Errorf("Expected draft unchanged, got %q", current.Letter)
	}
}

func TestRenderPDF(t *testing.T) {
	s := newTestServer(t, &fakeCompleter{}, testConfig())

	resp, body := do(t, s, jsonRequest(t, http.MethodPost, "/api/v1/pdf", LetterBody{Letter: sampleLetter}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}

	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Error("Expected PDF body")
	}
}

func TestRenderPDFEmpty(t *testing.T) {
	s := newTestServer(t, &fakeCompleter{}, testConfig())

	resp, body := do(t, s, jsonRequest(t, http.MethodPost, "/api/v1/pdf", LetterBody{Letter: ""}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d: %s", resp.StatusCode, body)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind     coverletter.Kind
		expected int
	}{
		{kind: coverletter.ErrInputValidation, expected: http.StatusBadRequest},
		{kind: coverletter.ErrGeneration, expected: http.StatusBadGateway},
		{kind: coverletter.ErrRender, expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		err := &coverletter.Error{Kind: tt.kind, Err: errors.New("cause")}
		if status := statusFor(err); status != tt.expected {
			t.Errorf("%s: expected %d, got %d", tt.kind, tt.expected, status)
		}
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, &fakeCompleter{}, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, "127.0.0.1:0")
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shut down")
	}
}
