package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"docrag/internal/adapter/chunker"
	"docrag/internal/adapter/fs"
	"docrag/internal/adapter/llm"
	"docrag/internal/adapter/registry"
	"docrag/internal/domain"
	"docrag/internal/usecase"
)

type stubExtractor struct {
	pages map[string][]domain.Page
}

func (s *stubExtractor) Extract(path string) ([]domain.Page, error) {
	return s.pages[filepath.Base(path)], nil
}

type stubStore struct {
	mu     sync.Mutex
	chunks []domain.Chunk
}

func (s *stubStore) Add(chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	return nil
}

func (s *stubStore) Search(query string, k int) ([]domain.ScoredChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := make([]domain.ScoredChunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		results = append(results, domain.ScoredChunk{Chunk: c, Score: 1})
	}
	if k > 0 && k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func (s *stubStore) DeleteByDocument(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if c.DocID != docID {
			kept = append(kept, c)
		}
	}
	s.chunks = kept
	return nil
}

func (s *stubStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	return nil
}

func (s *stubStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks), nil
}

func (s *stubStore) Sources() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sources := make(map[string]int)
	for _, c := range s.chunks {
		sources[c.Source]++
	}
	return sources, nil
}

func newTestServer(t *testing.T, extractor *stubExtractor, mock *llm.MockLLM) *Server {
	t.Helper()

	store := &stubStore{}
	reg := registry.NewMemoryRegistry()
	c, err := chunker.NewWindowChunker(100, 20)
	if err != nil {
		t.Fatal(err)
	}
	walker := fs.NewWalker(nil, nil)

	ingest := usecase.NewIngestUseCase(extractor, c, store, reg, walker, 1)
	answer := usecase.NewAnswerUseCase(store, mock, 4)
	documents := usecase.NewDocumentsUseCase(reg, store)

	logger := log.New(io.Discard)
	return New(Config{Addr: ":0"}, ingest, answer, documents, logger)
}

func multipartBody(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("%PDF-1.4 fake"))
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUploadAndQuery(t *testing.T) {
	extractor := &stubExtractor{pages: map[string][]domain.Page{
		"report.pdf": {{Text: "The project shipped in March.", Number: 1}},
	}}
	mock := &llm.MockLLM{Response: "It shipped in March."}
	srv := newTestServer(t, extractor, mock)

	body, contentType := multipartBody(t, "report.pdf")
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Successfully processed 1 files") {
		t.Errorf("unexpected upload response: %s", rec.Body.String())
	}

	qreq := httptest.NewRequest("POST", "/query", strings.NewReader(`{"query":"When did it ship?"}`))
	qrec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(qrec, qreq)

	if qrec.Code != http.StatusOK {
		t.Fatalf("query: expected 200, got %d", qrec.Code)
	}
	var resp queryResponse
	if err := json.Unmarshal(qrec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Response != "It shipped in March." {
		t.Errorf("unexpected answer: %q", resp.Response)
	}
	if len(resp.Sources) == 0 {
		t.Error("expected sources in query response")
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{}, &llm.MockLLM{})

	body, contentType := multipartBody(t, "notes.txt")
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Only PDF files are allowed") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestQueryEmptyCorpus(t *testing.T) {
	mock := &llm.MockLLM{Response: "never used"}
	srv := newTestServer(t, &stubExtractor{}, mock)

	req := httptest.NewRequest("POST", "/query", strings.NewReader(`{"query":"anything?"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No relevant documents found") {
		t.Errorf("expected no-documents message, got %s", rec.Body.String())
	}
	if len(mock.Prompts) != 0 {
		t.Errorf("LLM called on empty corpus: %d calls", len(mock.Prompts))
	}
}

func TestQueryValidation(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{}, &llm.MockLLM{})

	req := httptest.NewRequest("POST", "/query", strings.NewReader(`{"query":""}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty query: expected 400, got %d", rec.Code)
	}

	req = httptest.NewRequest("POST", "/query", strings.NewReader(`not json`))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: expected 400, got %d", rec.Code)
	}
}

func TestClearAndList(t *testing.T) {
	extractor := &stubExtractor{pages: map[string][]domain.Page{
		"doc.pdf": {{Text: "some content", Number: 1}},
	}}
	srv := newTestServer(t, extractor, &llm.MockLLM{})

	body, contentType := multipartBody(t, "doc.pdf")
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload failed: %s", rec.Body.String())
	}

	lrec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(lrec, httptest.NewRequest("GET", "/list-documents", nil))
	var listed documentsResponse
	if err := json.Unmarshal(lrec.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed.Documents) != 1 || listed.Documents[0].Filename != "doc.pdf" {
		t.Fatalf("unexpected listing: %+v", listed)
	}

	crec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(crec, httptest.NewRequest("POST", "/clear", nil))
	if crec.Code != http.StatusOK {
		t.Fatalf("clear failed: %s", crec.Body.String())
	}

	lrec2 := httptest.NewRecorder()
	srv.Handler().ServeHTTP(lrec2, httptest.NewRequest("GET", "/list-documents", nil))
	var after documentsResponse
	if err := json.Unmarshal(lrec2.Body.Bytes(), &after); err != nil {
		t.Fatal(err)
	}
	if len(after.Documents) != 0 {
		t.Errorf("documents remain after clear: %+v", after.Documents)
	}
}
