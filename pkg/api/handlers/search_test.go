package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mnemo/mnemo/pkg/api/models"
	"github.com/mnemo/mnemo/pkg/websearch"
)

func TestSearchHandler_Search(t *testing.T) {
	eng, searcher := newTestEngine()
	searcher.results = []websearch.Result{
		{Title: "B-tree indexes", URL: "https://example.com/btree", Content: "balanced tree structure", Score: 1.0},
	}

	if _, err := eng.Memories.Add(context.Background(), "user-1", "Postgres uses B-tree indexes by default", nil, nil); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	handler := NewSearchHandler(eng, testLogger(), nil)

	body := `{"query": "b-tree indexes", "user_id": "user-1", "limit": 5}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Search() status = %v, want %v, body %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count == 0 {
		t.Fatal("Search() returned no results")
	}
	if resp.Query != "b-tree indexes" {
		t.Errorf("Query = %q, want %q", resp.Query, "b-tree indexes")
	}

	var internal, external bool
	for _, result := range resp.Results {
		switch result.Source {
		case "internal":
			internal = true
		case "external":
			external = true
		}
	}
	if !internal || !external {
		t.Errorf("expected both sources, got internal=%v external=%v", internal, external)
	}
}

func TestSearchHandler_Search_InvalidBody(t *testing.T) {
	eng, _ := newTestEngine()
	handler := NewSearchHandler(eng, testLogger(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Search() status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestSearchHandler_Search_ValidationFailed(t *testing.T) {
	eng, _ := newTestEngine()
	handler := NewSearchHandler(eng, testLogger(), nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{"user_id": "user-1"}`},
		{"missing user", `{"query": "b-tree indexes"}`},
		{"limit too large", `{"query": "q", "user_id": "user-1", "limit": 500}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Search(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Search() status = %v, want %v", w.Code, http.StatusBadRequest)
			}
		})
	}
}
