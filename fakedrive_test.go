package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// fakeItem : File or folder on the fake Drive.
type fakeItem struct {
	ID       string
	Name     string
	MimeType string
	Parent   string
	Content  []byte
	Trashed  bool
}

// fakeDrive : Minimal Drive API v3 backend for files.list and files.get.
type fakeDrive struct {
	mu        sync.Mutex
	items     map[string]*fakeItem
	order     []string
	failList  map[string]bool
	failGet   map[string]bool
	failMedia map[string]bool
	noRange   bool
	listCalls int
	media     []string
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		items:     map[string]*fakeItem{},
		failList:  map[string]bool{},
		failGet:   map[string]bool{},
		failMedia: map[string]bool{},
	}
}

func (f *fakeDrive) addFolder(id, name, parent string) {
	f.add(&fakeItem{ID: id, Name: name, MimeType: folderMimeType, Parent: parent})
}

func (f *fakeDrive) addFile(id, name, mimeType, parent, content string) {
	f.add(&fakeItem{ID: id, Name: name, MimeType: mimeType, Parent: parent, Content: []byte(content)})
}

func (f *fakeDrive) add(item *fakeItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.ID] = item
	f.order = append(f.order, item.ID)
}

func (f *fakeDrive) rename(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[id].Name = name
}

func (f *fakeDrive) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeDrive) mediaRequests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.media...)
}

var parentQuery = regexp.MustCompile(`'([^']+)' in parents`)

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := strings.TrimPrefix(r.URL.Path, "/files")
	if path == "" {
		f.list(w, r)
		return
	}
	id := strings.TrimPrefix(path, "/")
	item, ok := f.items[id]
	if !ok || f.failGet[id] && r.URL.Query().Get("alt") != "media" {
		writeAPIError(w, http.StatusNotFound, "File not found: "+id)
		return
	}
	if r.URL.Query().Get("alt") == "media" {
		f.serveMedia(w, r, item)
		return
	}
	writeJSON(w, fileJSON(item))
}

func (f *fakeDrive) list(w http.ResponseWriter, r *http.Request) {
	f.listCalls++
	q := r.URL.Query()
	m := parentQuery.FindStringSubmatch(q.Get("q"))
	if m == nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid query")
		return
	}
	parent := m[1]
	if f.failList[parent] {
		writeAPIError(w, http.StatusForbidden, "Insufficient permissions for this folder")
		return
	}
	var children []*fakeItem
	for _, id := range f.order {
		if it := f.items[id]; it.Parent == parent && !it.Trashed {
			children = append(children, it)
		}
	}
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	if pageSize <= 0 {
		pageSize = 100
	}
	start, _ := strconv.Atoi(q.Get("pageToken"))
	end := start + pageSize
	if end > len(children) {
		end = len(children)
	}
	files := []map[string]interface{}{}
	for _, it := range children[start:end] {
		files = append(files, fileJSON(it))
	}
	res := map[string]interface{}{"files": files}
	if end < len(children) {
		res["nextPageToken"] = strconv.Itoa(end)
	}
	writeJSON(w, res)
}

func (f *fakeDrive) serveMedia(w http.ResponseWriter, r *http.Request, item *fakeItem) {
	rng := r.Header.Get("Range")
	f.media = append(f.media, item.ID+" "+rng)
	if f.failMedia[item.ID] {
		writeAPIError(w, http.StatusForbidden, "The user does not have sufficient permissions for this file.")
		return
	}
	if rng == "" || f.noRange {
		w.WriteHeader(http.StatusOK)
		w.Write(item.Content)
		return
	}
	var start, end int
	if _, err := fmt.Sscanf(rng, "bytes=%d-%d", &start, &end); err != nil || start >= len(item.Content) {
		writeAPIError(w, http.StatusRequestedRangeNotSatisfiable, "Invalid range")
		return
	}
	if end >= len(item.Content) {
		end = len(item.Content) - 1
	}
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(item.Content)))
	w.WriteHeader(http.StatusPartialContent)
	w.Write(item.Content[start : end+1])
}

func fileJSON(it *fakeItem) map[string]interface{} {
	m := map[string]interface{}{
		"id":          it.ID,
		"name":        it.Name,
		"mimeType":    it.MimeType,
		"webViewLink": "https://drive.google.com/file/d/" + it.ID + "/view",
	}
	if it.MimeType != folderMimeType && len(it.Content) > 0 {
		m["size"] = strconv.Itoa(len(it.Content))
	}
	return m
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{"code": code, "message": msg},
	})
}

// newFakeService : Create the service of Drive API connected to f.
func newFakeService(t *testing.T, f *fakeDrive) *drive.Service {
	t.Helper()
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)
	srv, err := drive.NewService(context.Background(), option.WithEndpoint(ts.URL+"/"), option.WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatalf("drive.NewService() error = %v", err)
	}
	return srv
}

// scriptedPrompter : prompter returning the prepared answers in order.
type scriptedPrompter struct {
	answers []string
	asked   []string
}

func (s *scriptedPrompter) ask(question string) (string, error) {
	s.asked = append(s.asked, question)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}
