// Package testutil provides testing utilities for the NGC population
// collector.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// GroupsPath is the groups endpoint path served by the mock.
const GroupsPath = "/api/coins/research/groups/"

// PopulationPath is the population endpoint base path served by the mock.
const PopulationPath = "/api/coins/research/population"

// MockResearchAPI is a configurable mock research API server for testing.
// Endpoints are paginated the way the real API paginates: each page body
// is {"Items": [...], "ShowNextPage": bool}, selected by the "page"
// query parameter.
type MockResearchAPI struct {
	server *httptest.Server
	mu     sync.RWMutex

	// pages maps a path to its ordered page item lists.
	pages map[string][][]json.RawMessage

	// failures maps path -> page number -> HTTP status to return instead.
	failures map[string]map[int]int

	// handlers maps a path to a fully custom handler.
	handlers map[string]http.HandlerFunc

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockResearchAPI creates a new mock research API server.
func NewMockResearchAPI() *MockResearchAPI {
	mock := &MockResearchAPI{
		pages:    make(map[string][][]json.RawMessage),
		failures: make(map[string]map[int]int),
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.pagedHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockResearchAPI) URL() string {
	return m.server.URL
}

// GroupsURL returns the full groups endpoint URL.
func (m *MockResearchAPI) GroupsURL() string {
	return m.server.URL + GroupsPath
}

// PopulationURL returns the population endpoint base URL.
func (m *MockResearchAPI) PopulationURL() string {
	return m.server.URL + PopulationPath
}

// Close shuts down the mock server.
func (m *MockResearchAPI) Close() {
	m.server.Close()
}

// Reset clears all configured pages, failures, and tracking counters.
func (m *MockResearchAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = make(map[string][][]json.RawMessage)
	m.failures = make(map[string]map[int]int)
	m.handlers = make(map[string]http.HandlerFunc)
	m.RequestCount = 0
	m.LastRequestHeader = nil
}

// SetHandler sets a fully custom handler for a specific path.
func (m *MockResearchAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetPages configures the paginated item lists served at path. Page n
// (1-based) serves itemPages[n-1] with ShowNextPage true for every page
// but the last; pages past the end serve an empty Items array.
func (m *MockResearchAPI) SetPages(path string, itemPages ...[]any) {
	marshaled := make([][]json.RawMessage, len(itemPages))
	for i, items := range itemPages {
		page := make([]json.RawMessage, len(items))
		for j, item := range items {
			data, err := json.Marshal(item)
			if err != nil {
				panic(fmt.Sprintf("marshal mock item: %v", err))
			}
			page[j] = data
		}
		marshaled[i] = page
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[path] = marshaled
}

// SetGroupsPages configures the groups endpoint with pages of group IDs.
func (m *MockResearchAPI) SetGroupsPages(idPages ...[]int) {
	itemPages := make([][]any, len(idPages))
	for i, ids := range idPages {
		items := make([]any, len(ids))
		for j, id := range ids {
			items[j] = map[string]any{"researchGroupID": id}
		}
		itemPages[i] = items
	}
	m.SetPages(GroupsPath, itemPages...)
}

// SetPopulationPages configures the population endpoint for one
// (group, designation) pair with pages of coin records.
func (m *MockResearchAPI) SetPopulationPages(designation string, groupID int, coinPages ...[]any) {
	m.SetPages(PopulationPageKey(designation, groupID), coinPages...)
}

// PopulationPageKey returns the fixture key for one (group, designation)
// pair, usable with SetPages and FailPage.
func PopulationPageKey(designation string, groupID int) string {
	return fmt.Sprintf("%s/%s/?researchGroupID=%d", PopulationPath, designation, groupID)
}

// FailPage makes page n of path answer with the given HTTP status
// instead of its configured body.
func (m *MockResearchAPI) FailPage(path string, page, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures[path] == nil {
		m.failures[path] = make(map[int]int)
	}
	m.failures[path][page] = status
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockResearchAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// pagedHandler serves the configured pages for a path.
func (m *MockResearchAPI) pagedHandler(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	// Fixtures for the population endpoint are keyed per group; other
	// endpoints are keyed by bare path.
	key := r.URL.Path
	if gid := r.URL.Query().Get("researchGroupID"); gid != "" {
		key = r.URL.Path + "?researchGroupID=" + gid
	}

	m.mu.RLock()
	pages, ok := m.pages[key]
	if !ok {
		pages = m.pages[r.URL.Path]
	}
	status, failed := 0, false
	if byPage, ok := m.failures[key]; ok {
		status, failed = byPage[page], byPage[page] != 0
	}
	m.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if failed {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error": "injected failure for page %d"}`, page)
		return
	}

	body := struct {
		Items        []json.RawMessage `json:"Items"`
		ShowNextPage bool              `json:"ShowNextPage"`
	}{
		Items: []json.RawMessage{},
	}

	if page <= len(pages) {
		body.Items = pages[page-1]
		body.ShowNextPage = page < len(pages)
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		panic(fmt.Sprintf("encode mock page: %v", err))
	}
}
