/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Package storetest provides an in-memory REST store that behaves like json-server for the
// requests issued by store.Client. Tests use it to observe the writes made by the server and to
// inject failures.
package storetest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/botobag/taskgraph/model"
	"github.com/botobag/taskgraph/store"

	"github.com/json-iterator/go"
)

// Numbers stay json.Number so that ids keep their exact text.
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

type row map[string]interface{}

// Request records one request received by the Server.
type Request struct {
	Method string
	Path   string
	// RawPath is the path as it was sent, with escapes intact.
	RawPath string
	Query   string
	Body    string
}

type failure struct {
	method string
	path   string
	status int
}

// Server is an in-memory store served over HTTP. It supports the tasks, users and projects
// collections, `_embed=tasks` on a single project, and assigns numeric ids to created rows. DELETE
// never cascades.
type Server struct {
	server *httptest.Server

	mutex    sync.Mutex
	rows     map[store.Resource][]row
	nextID   int64
	requests []Request
	failures []failure
}

// NewServer starts a Server with empty collections. Call Close when done.
func NewServer() *Server {
	s := &Server{
		rows: map[store.Resource][]row{
			store.ResourceTasks:    nil,
			store.ResourceUsers:    nil,
			store.ResourceProjects: nil,
		},
		nextID: 1,
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

// URL returns the base URL of the server.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.Close()
}

// NewClient returns a store.Client talking to the server.
func (s *Server) NewClient() *store.Client {
	client, err := store.NewClient(store.Config{
		BaseURL:    s.server.URL,
		HTTPClient: s.server.Client(),
	})
	if err != nil {
		panic(err)
	}
	return client
}

// Put stores value (a model entity or any JSON-encodable object) in resource. If value has no id,
// the next numeric id is assigned. Put returns the id of the row.
func (s *Server) Put(resource store.Resource, value interface{}) model.ID {
	data, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}
	var r row
	if err := json.Unmarshal(data, &r); err != nil {
		panic(err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.insert(resource, r)
}

// PutTask stores task and returns its id.
func (s *Server) PutTask(task *model.Task) model.ID {
	return s.Put(store.ResourceTasks, task)
}

// PutUser stores user and returns its id.
func (s *Server) PutUser(user *model.User) model.ID {
	return s.Put(store.ResourceUsers, user)
}

// PutProject stores project and returns its id.
func (s *Server) PutProject(project *model.Project) model.ID {
	return s.Put(store.ResourceProjects, project)
}

// Lookup decodes the row identified by id into out and returns true if it exists.
func (s *Server) Lookup(resource store.Resource, id model.ID, out interface{}) bool {
	s.mutex.Lock()
	r, _ := s.find(resource, id.String())
	var (
		data []byte
		err  error
	)
	if r != nil {
		data, err = json.Marshal(r)
	}
	s.mutex.Unlock()

	if r == nil {
		return false
	}
	if err == nil {
		err = json.Unmarshal(data, out)
	}
	if err != nil {
		panic(err)
	}
	return true
}

// Task returns the stored task or nil.
func (s *Server) Task(id model.ID) *model.Task {
	var task model.Task
	if !s.Lookup(store.ResourceTasks, id, &task) {
		return nil
	}
	return &task
}

// User returns the stored user or nil.
func (s *Server) User(id model.ID) *model.User {
	var user model.User
	if !s.Lookup(store.ResourceUsers, id, &user) {
		return nil
	}
	return &user
}

// Project returns the stored project or nil.
func (s *Server) Project(id model.ID) *model.Project {
	var project model.Project
	if !s.Lookup(store.ResourceProjects, id, &project) {
		return nil
	}
	return &project
}

// Len returns the number of rows in resource.
func (s *Server) Len(resource store.Resource) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.rows[resource])
}

// FailOn makes every request with method to path (without query) answer status until
// ClearFailures is called.
func (s *Server) FailOn(method string, path string, status int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.failures = append(s.failures, failure{method, path, status})
}

// ClearFailures removes every failure set by FailOn.
func (s *Server) ClearFailures() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.failures = nil
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	result := make([]Request, len(s.requests))
	copy(result, s.requests)
	return result
}

// Count returns the number of requests received with method whose path starts with pathPrefix.
func (s *Server) Count(method string, pathPrefix string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	n := 0
	for _, req := range s.requests {
		if req.Method == method && strings.HasPrefix(req.Path, pathPrefix) {
			n++
		}
	}
	return n
}

// ResetRequests forgets the requests received so far.
func (s *Server) ResetRequests() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.requests = nil
}

func (s *Server) insert(resource store.Resource, r row) model.ID {
	id, ok := r["id"]
	if !ok || id == nil {
		id = jsoniter.Number(strconv.FormatInt(s.nextID, 10))
		r["id"] = id
		s.nextID++
	} else if n, err := strconv.ParseInt(fmt.Sprint(id), 10, 64); err == nil && n >= s.nextID {
		s.nextID = n + 1
	}
	s.rows[resource] = append(s.rows[resource], r)
	return model.ID(fmt.Sprint(id))
}

func (s *Server) find(resource store.Resource, id string) (row, int) {
	for i, r := range s.rows[resource] {
		if fmt.Sprint(r["id"]) == id {
			return r, i
		}
	}
	return nil, -1
}

func (s *Server) serveHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.requests = append(s.requests, Request{
		Method:  req.Method,
		Path:    req.URL.Path,
		RawPath: req.URL.EscapedPath(),
		Query:   req.URL.RawQuery,
		Body:    string(body),
	})

	for _, f := range s.failures {
		if f.method == req.Method && f.path == req.URL.Path {
			writeJSON(w, f.status, row{})
			return
		}
	}

	segments := strings.Split(strings.Trim(req.URL.EscapedPath(), "/"), "/")
	for i, segment := range segments {
		if unescaped, err := url.PathUnescape(segment); err == nil {
			segments[i] = unescaped
		}
	}
	resource := store.Resource(segments[0])
	if _, ok := s.rows[resource]; !ok || len(segments) > 2 {
		writeJSON(w, http.StatusNotFound, row{})
		return
	}

	if len(segments) == 1 {
		switch req.Method {
		case http.MethodGet:
			rows := s.rows[resource]
			if rows == nil {
				rows = []row{}
			}
			writeJSON(w, http.StatusOK, rows)
		case http.MethodPost:
			var r row
			if err := json.Unmarshal(body, &r); err != nil || r == nil {
				writeJSON(w, http.StatusBadRequest, row{})
				return
			}
			if id, ok := r["id"]; ok && id != nil {
				if existing, _ := s.find(resource, fmt.Sprint(id)); existing != nil {
					writeJSON(w, http.StatusInternalServerError, row{})
					return
				}
			}
			s.insert(resource, r)
			writeJSON(w, http.StatusCreated, r)
		default:
			writeJSON(w, http.StatusNotFound, row{})
		}
		return
	}

	r, index := s.find(resource, segments[1])
	if r == nil {
		writeJSON(w, http.StatusNotFound, row{})
		return
	}

	switch req.Method {
	case http.MethodGet:
		if embed := req.URL.Query().Get("_embed"); len(embed) > 0 {
			writeJSON(w, http.StatusOK, s.embed(resource, r, store.Resource(embed)))
			return
		}
		writeJSON(w, http.StatusOK, r)

	case http.MethodPatch:
		var partial row
		if err := json.Unmarshal(body, &partial); err != nil {
			writeJSON(w, http.StatusBadRequest, row{})
			return
		}
		merged := row{}
		for k, v := range r {
			merged[k] = v
		}
		for k, v := range partial {
			if k != "id" {
				merged[k] = v
			}
		}
		s.rows[resource][index] = merged
		writeJSON(w, http.StatusOK, merged)

	case http.MethodDelete:
		rows := s.rows[resource]
		s.rows[resource] = append(rows[:index:index], rows[index+1:]...)
		writeJSON(w, http.StatusOK, row{})

	default:
		writeJSON(w, http.StatusNotFound, row{})
	}
}

// embed returns a copy of r with the rows of child that refer to r in place of the field named
// after child. The foreign key is the singular resource name followed by "Id".
func (s *Server) embed(resource store.Resource, r row, child store.Resource) row {
	foreignKey := strings.TrimSuffix(string(resource), "s") + "Id"
	id := fmt.Sprint(r["id"])

	children := []row{}
	for _, c := range s.rows[child] {
		if v, ok := c[foreignKey]; ok && v != nil && fmt.Sprint(v) == id {
			children = append(children, c)
		}
	}

	result := row{}
	for k, v := range r {
		result[k] = v
	}
	result[string(child)] = children
	return result
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte("{}")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}
