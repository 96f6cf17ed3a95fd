// Package apitest runs an in-process fake of the todo REST API for tests.
//
// It implements the endpoints the client consumes with the same URL, method,
// body and status contracts, issues HS256 JWTs with a short expiry, and
// rejects protected calls with 401 the way the real server does.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clive/todo-tui/internal/model"
)

// Secret signs every token the fake server issues.
var Secret = []byte("apitest-secret")

// SignToken mints an HS256 token for subject that expires at exp.
func SignToken(subject string, exp time.Time) string {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ID:        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(Secret)
	if err != nil {
		panic(fmt.Sprintf("sign token: %v", err))
	}
	return token
}

// Request records one request the server received
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type account struct {
	user     model.User
	password string
}

// Server is a fake todo API
type Server struct {
	*httptest.Server

	// PageSize is the number of todos per page
	PageSize int
	// TokenTTL is the lifetime of issued access tokens
	TokenTTL time.Duration

	mu       sync.Mutex
	accounts map[string]*account // By email
	todos    map[string][]model.Todo
	nextID   int
	requests []Request
}

// NewServer starts a fake API. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		PageSize: 10,
		TokenTTL: 5 * time.Minute,
		accounts: make(map[string]*account),
		todos:    make(map[string][]model.Todo),
		nextID:   1,
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// APIURL is the base URL a client should be configured with
func (s *Server) APIURL() string {
	return s.URL + "/api/"
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login/", s.login)
		r.Post("/users/signup/", s.signup)

		r.Group(func(r chi.Router) {
			r.Use(s.bearerAuth)
			r.Post("/users/change-password/", s.changePassword)
			r.Get("/users/me/", s.getMe)
			r.Patch("/users/me/", s.patchMe)
			r.Get("/todos/", s.listTodos)
			r.Post("/todos/", s.createTodo)
			r.Patch("/todos/{id}/", s.updateTodo)
			r.Delete("/todos/{id}/", s.deleteTodo)
		})
	})
	return r
}

// AddUser registers an account directly
func (s *Server) AddUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addUserLocked(email, password, "", "")
}

func (s *Server) addUserLocked(email, password, first, last string) *account {
	acct := &account{
		user: model.User{
			ID:        len(s.accounts) + 1,
			Email:     email,
			FirstName: first,
			LastName:  last,
		},
		password: password,
	}
	s.accounts[email] = acct
	return acct
}

// AddTodo stores a todo owned by email and returns it with its id assigned
func (s *Server) AddTodo(email string, t model.Todo) model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addTodoLocked(email, t)
}

func (s *Server) addTodoLocked(email string, t model.Todo) model.Todo {
	now := time.Now().UTC().Format(time.RFC3339)
	t.ID = s.nextID
	s.nextID++
	if t.Priority == "" {
		t.Priority = model.PriorityModerate
	}
	t.CreatedAt, t.UpdatedAt = now, now
	s.todos[email] = append(s.todos[email], t)
	return t
}

// Todos returns a copy of email's todos
func (s *Server) Todos(email string) []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Todo(nil), s.todos[email]...)
}

// User returns the stored profile for email
func (s *Server) User(email string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[email]
	if !ok {
		return model.User{}, false
	}
	return acct.user, true
}

// Requests returns every request received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}

		var claims jwt.RegisteredClaims
		_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
			return Secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
			})
			return
		}

		s.mu.Lock()
		_, exists := s.accounts[claims.Subject]
		s.mu.Unlock()
		if !exists {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "User not found"})
			return
		}

		next.ServeHTTP(w, r.WithContext(withEmail(r.Context(), claims.Subject)))
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Malformed request body"})
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[body.Email]
	ttl := s.TokenTTL
	s.mu.Unlock()
	if !ok || acct.password != body.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "No active account found with the given credentials",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access":  SignToken(body.Email, time.Now().Add(ttl)),
		"refresh": SignToken(body.Email, time.Now().Add(24*time.Hour)),
	})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Malformed request body"})
		return
	}

	fieldErrs := map[string][]string{}
	if body.Email == "" {
		fieldErrs["email"] = []string{"This field may not be blank."}
	}
	if body.Password == "" {
		fieldErrs["password"] = []string{"This field may not be blank."}
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrs)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[body.Email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"email": {"user with this email already exists."},
		})
		return
	}
	acct := s.addUserLocked(body.Email, body.Password, body.FirstName, body.LastName)
	writeJSON(w, http.StatusCreated, acct.user)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Malformed request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accounts[emailFrom(r.Context())]
	if acct.password != body.OldPassword {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"old_password": {"Wrong password."}})
		return
	}
	acct.password = body.NewPassword
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Password updated successfully"})
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.accounts[emailFrom(r.Context())].user)
}

func (s *Server) patchMe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Expected multipart form data"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := &s.accounts[emailFrom(r.Context())].user

	set := func(field string, dst *string) {
		if vals, ok := r.MultipartForm.Value[field]; ok && len(vals) > 0 {
			*dst = vals[0]
		}
	}
	set("first_name", &u.FirstName)
	set("last_name", &u.LastName)
	set("address", &u.Address)
	set("contact_number", &u.ContactNumber)
	set("birthday", &u.Birthday)
	set("bio", &u.Bio)

	if files := r.MultipartForm.File["profile_image"]; len(files) > 0 {
		path := "/media/profile/" + files[0].Filename
		u.ProfileImage = &path
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	search := strings.ToLower(r.URL.Query().Get("search"))

	s.mu.Lock()
	var matched []model.Todo
	for _, t := range s.todos[emailFrom(r.Context())] {
		if search == "" ||
			strings.Contains(strings.ToLower(t.Title), search) ||
			strings.Contains(strings.ToLower(t.Description), search) {
			matched = append(matched, t)
		}
	}
	size := s.PageSize
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	start := (page - 1) * size
	if start > len(matched) || (start == len(matched) && page > 1) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Invalid page."})
		return
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	resp := model.TodoPage{
		Count:   len(matched),
		Results: append([]model.Todo{}, matched[start:end]...),
	}
	if end < len(matched) {
		next := s.pageURL(r, page+1)
		resp.Next = &next
	}
	if page > 1 {
		prev := s.pageURL(r, page-1)
		resp.Previous = &prev
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	return s.URL + r.URL.Path + "?" + q.Encode()
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	var in model.TodoInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Malformed request body"})
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"title": {"This field may not be blank."}})
		return
	}
	if in.Priority != "" && !in.Priority.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"priority": {fmt.Sprintf("%q is not a valid choice.", in.Priority)},
		})
		return
	}

	t := model.Todo{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		TodoDate:    in.TodoDate,
	}
	if in.IsCompleted != nil {
		t.IsCompleted = *in.IsCompleted
	}
	if in.Position != nil {
		t.Position = *in.Position
	}

	s.mu.Lock()
	created := s.addTodoLocked(emailFrom(r.Context()), t)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateTodo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	var patch model.TodoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Malformed request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	todos := s.todos[emailFrom(r.Context())]
	for i := range todos {
		if todos[i].ID != id {
			continue
		}
		t := &todos[i]
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.TodoDate != nil {
			t.TodoDate = *patch.TodoDate
		}
		if patch.IsCompleted != nil {
			t.IsCompleted = *patch.IsCompleted
		}
		if patch.Position != nil {
			t.Position = *patch.Position
		}
		t.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		writeJSON(w, http.StatusOK, t)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email := emailFrom(r.Context())
	todos := s.todos[email]
	for i := range todos {
		if todos[i].ID == id {
			s.todos[email] = append(todos[:i], todos[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
