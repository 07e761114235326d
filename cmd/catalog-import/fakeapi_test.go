package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeAPI is an in-memory stand-in for the catalog collections.
type fakeAPI struct {
	mu     sync.Mutex
	items  map[string][]map[string]any
	nextID int
	posts  int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{items: make(map[string][]map[string]any)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/{collection}", api.list)
	mux.HandleFunc("POST /api/{collection}", api.create)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, srv
}

func (f *fakeAPI) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.items[r.PathValue("collection")]
	if items == nil {
		items = []map[string]any{}
	}
	_ = json.NewEncoder(w).Encode(items)
}

func (f *fakeAPI) create(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts++

	collection := r.PathValue("collection")
	var item map[string]any
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, `{"error":"invalid_request"}`, http.StatusBadRequest)
		return
	}
	if name, _ := item["name"].(string); strings.HasPrefix(name, "reject") {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"validation_error","message":"rejected"}`))
		return
	}
	if collection == kindOwners {
		for _, existing := range f.items[collection] {
			if existing["matricula"] == item["matricula"] {
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"error":"conflict"}`))
				return
			}
		}
	}

	f.nextID++
	item["id"] = fmt.Sprintf("id-%d", f.nextID)
	f.items[collection] = append(f.items[collection], item)

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(item)
}

func (f *fakeAPI) find(collection, field, value string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items[collection] {
		if item[field] == value {
			return item
		}
	}
	return nil
}

func (f *fakeAPI) seed(collection string, item map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	item["id"] = fmt.Sprintf("id-%d", f.nextID)
	f.items[collection] = append(f.items[collection], item)
}
