package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"docrag/internal/domain"
	"docrag/internal/usecase"
)

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type queryResponse struct {
	Response string          `json:"response"`
	Sources  []domain.Source `json:"sources,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type documentEntry struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	UploadTime string `json:"upload_time,omitempty"`
	Chunks     int    `json:"chunks"`
}

type documentsResponse struct {
	Documents []documentEntry `json:"documents"`
	Message   string          `json:"message,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Document Analyzer RAG API",
		"endpoints": map[string]string{
			"POST /upload":        "Upload PDF documents",
			"POST /query":         "Query the document collection",
			"GET /list-documents": "List ingested documents",
			"POST /clear":         "Clear all documents",
		},
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	tempDir, err := os.MkdirTemp("", "docrag-upload-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer os.RemoveAll(tempDir)

	for _, header := range files {
		path, err := saveUpload(header, tempDir)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		result, err := s.ingest.IngestFile(path)
		if err != nil {
			if errors.Is(err, usecase.ErrNotPDF) {
				writeError(w, http.StatusBadRequest, "Only PDF files are allowed")
				return
			}
			s.logger.Error("ingestion failed", "file", header.Filename, "err", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.logger.Info("document ingested", "file", result.Filename, "pages", result.Pages, "chunks", result.Chunks)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Successfully processed %d files", len(files)),
	})
}

func saveUpload(header *multipart.FileHeader, dir string) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s: %w", header.Filename, err)
	}
	defer src.Close()

	path := filepath.Join(dir, filepath.Base(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write upload %s: %w", header.Filename, err)
	}
	return path, nil
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	answer, err := s.answer.Answer(req.Query, req.TopK, "")
	if err != nil {
		s.logger.Error("query failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Response: answer.Text,
		Sources:  answer.Sources,
		Error:    answer.Error,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, authoritative, err := s.documents.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := documentsResponse{Documents: make([]documentEntry, 0, len(docs))}
	for _, doc := range docs {
		entry := documentEntry{
			ID:       doc.ID,
			Filename: doc.Filename,
			Chunks:   doc.ChunkCount,
		}
		if !doc.UploadTime.IsZero() {
			entry.UploadTime = doc.UploadTime.Format(time.RFC3339)
		}
		resp.Documents = append(resp.Documents, entry)
	}
	if !authoritative && len(docs) > 0 {
		resp.Message = "registry unavailable; listing reconstructed from vector store (approximate)"
	}
	if len(docs) == 0 {
		resp.Message = "No documents found"
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Clear(); err != nil {
		s.logger.Error("clear failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully cleared all documents",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
