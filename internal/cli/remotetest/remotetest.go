// Package remotetest - in-memory подделка удалённого хранилища items и постов,
// обслуживаемая по HTTP через chi. Тесты направляют api.Client на Start().URL.
package remotetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"HomeLedger/internal/cli/api"
	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Ключи маршрутов для Calls, FailNext и LastForm.
const (
	RouteListItems    = "GET /api/items"
	RouteCreateItem   = "POST /api/items"
	RouteReplaceItem  = "PUT /api/items/{id}"
	RouteDeleteItem   = "DELETE /api/items/{id}"
	RouteIncreaseItem = "PATCH /api/items/{id}/increase"
	RouteDecreaseItem = "PATCH /api/items/{id}/decrease"
	RouteListPosts    = "GET /api/posts/all"
	RouteCreatePost   = "POST /api/posts/create"
	RouteGetPost      = "GET /api/posts/{userId}/{postId}"
	RouteUpdatePost   = "PUT /api/posts/{userId}/{postId}"
	RouteDeletePost   = "DELETE /api/posts/{userId}/{postId}"
	RouteMedia        = "GET /api/posts/media/{filename}"
)

// SubmittedForm - полученное подделкой multipart-тело.
type SubmittedForm struct {
	Fields map[string][]string
	Files  map[string][]string // field -> original filenames
}

// Store - подделка удалённого хранилища.
type Store struct {
	// AllowNegative разрешает уменьшать количество ниже нуля.
	AllowNegative bool
	// Now проставляет время создания постов; по умолчанию time.Now.
	Now func() time.Time

	mu        sync.Mutex
	items     map[string]model.Item
	itemOrder []string
	posts     map[string]api.PostDTO
	media     map[string][]byte
	calls     map[string]int
	fail      map[string]int
	forms     map[string]SubmittedForm
	seq       int
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{
		items: map[string]model.Item{},
		posts: map[string]api.PostDTO{},
		media: map[string][]byte{},
		calls: map[string]int{},
		fail:  map[string]int{},
		forms: map[string]SubmittedForm{},
	}
}

// Start поднимает хранилище на локальном тестовом сервере; закрыть после использования.
func (s *Store) Start() *httptest.Server {
	return httptest.NewServer(s.Router())
}

// Router возвращает chi-роутер подделки.
func (s *Store) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithLogging)
	r.Route("/api/items", func(r chi.Router) {
		r.Get("/", s.listItems)
		r.Post("/", s.createItem)
		r.Put("/{id}", s.replaceItem)
		r.Delete("/{id}", s.deleteItem)
		r.Patch("/{id}/increase", s.increaseItem)
		r.Patch("/{id}/decrease", s.decreaseItem)
	})
	r.Route("/api/posts", func(r chi.Router) {
		r.Get("/all", s.listPosts)
		r.Post("/create", s.createPost)
		r.Get("/media/{filename}", s.getMedia)
		r.Get("/{userId}/{postId}", s.getPost)
		r.Put("/{userId}/{postId}", s.updatePost)
		r.Delete("/{userId}/{postId}", s.deletePost)
	})
	return r
}

// FailNext заставляет следующий вызов route ответить status.
func (s *Store) FailNext(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[route] = status
}

// Calls возвращает число вызовов route.
func (s *Store) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls возвращает число запросов по всем маршрутам.
func (s *Store) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// LastForm возвращает последнее multipart-тело route.
func (s *Store) LastForm(route string) SubmittedForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forms[route]
}

// PutItem добавляет item; пустой ID генерируется.
func (s *Store) PutItem(it model.Item) model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putItemLocked(it)
}

func (s *Store) putItemLocked(it model.Item) model.Item {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if _, ok := s.items[it.ID]; !ok {
		s.itemOrder = append(s.itemOrder, it.ID)
	}
	s.items[it.ID] = it
	return it
}

// Item возвращает сохранённый item.
func (s *Store) Item(id string) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	return it, ok
}

// PutPost добавляет пост; пустой ID генерируется.
func (s *Store) PutPost(p api.PostDTO) api.PostDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.posts[p.ID] = p
	return p
}

// Post возвращает сохранённый пост.
func (s *Store) Post(id string) (api.PostDTO, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	return p, ok
}

// PutMedia добавляет медиафайл.
func (s *Store) PutMedia(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media[name] = data
}

// HasMedia сообщает, что медиафайл сохранён.
func (s *Store) HasMedia(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.media[name]
	return ok
}

// enter считает вызов и сообщает, продолжать ли обработку.
func (s *Store) enter(w http.ResponseWriter, route string) bool {
	s.mu.Lock()
	s.calls[route]++
	status, failing := s.fail[route]
	if failing {
		delete(s.fail, route)
	}
	s.mu.Unlock()
	if failing {
		http.Error(w, "injected failure", status)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Store) listItems(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, RouteListItems) {
		return
	}
	owner := r.URL.Query().Get("user_id")
	s.mu.Lock()
	out := make([]model.Item, 0, len(s.itemOrder))
	for _, id := range s.itemOrder {
		it, ok := s.items[id]
		if !ok {
			continue
		}
		if owner == "" || it.OwnerID == owner {
			out = append(out, it)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Store) createItem(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, RouteCreateItem) {
		return
	}
	var it model.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	it.ID = ""
	s.mu.Lock()
	it = s.putItemLocked(it)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, it)
}

func (s *Store) replaceItem(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, RouteReplaceItem) {
		return
	}
	id := chi.URLParam(r, "id")
	var it model.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	it.ID = id
	s.items[id] = it
	writeJSON(w, http.StatusOK, it)
}

func (s *Store) deleteItem(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, RouteDeleteItem) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	delete(s.items, id)
	for i, x := range s.itemOrder {
		if x == id {
			s.itemOrder = append(s.itemOrder[:i], s.itemOrder[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Store) increaseItem(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, RouteIncreaseItem) {
		return
	}
	id := chi.URLParam(r, "id")
	var req api.IncreaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	it.Qty += req.Quantity
	if !req.PurchasedDate.IsZero() {
		it.PurchasedDate = req.PurchasedDate
	}
	if req.ExpDate != nil && !req.ExpDate.IsZero() {
		exp := *req.ExpDate
		it.ExpDate = &exp
	}
	s.items[id] = it
	writeJSON(w, http.StatusOK, it)
}

func (s *Store) decreaseItem(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, RouteDecreaseItem) {
		return
	}
	id := chi.URLParam(r, "id")
	var req api.DecreaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	if it.Qty-req.Quantity < 0 && !s.AllowNegative {
		http.Error(w, "insufficient quantity", http.StatusBadRequest)
		return
	}
	it.Qty -= req.Quantity
	s.items[id] = it
	writeJSON(w, http.StatusOK, it)
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// storeFiles сохраняет загруженные части поля под именами с меткой времени.
func (s *Store) storeFiles(r *http.Request, field string, sub *SubmittedForm) ([]string, error) {
	var names []string
	for _, fh := range r.MultipartForm.File[field] {
		sub.Files[field] = append(sub.Files[field], fh.Filename)
		if fh.Size == 0 {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.seq++
		name := fmt.Sprintf("%s%03d_%s", s.now().UTC().Format("20060102_150405"), s.seq, strings.ReplaceAll(fh.Filename, " ", "_"))
		s.media[name] = data
		s.mu.Unlock()
		names = append(names, name)
	}
	return names, nil
}

func parseForm(r *http.Request) (SubmittedForm, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return SubmittedForm{}, err
	}
	sub := SubmittedForm{Fields: map[string][]string{}, Files: map[string][]string{}}
	for k, v := range r.MultipartForm.Value {
		sub.Fields[k] = append([]string(nil), v...)
	}
	return sub, nil
}

func first(m map[string][]string, key string) (string, bool) {
	v, ok := m[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func (s *Store) listPosts(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, RouteListPosts) {
		return
	}
	s.mu.Lock()
	out := make([]api.PostDTO, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	s.mu.Unlock()
	if len(out) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	// порядок хранилища: по возрастанию времени создания
	sort.Slice(out, func(i, j int) bool {
		return timeOf(out[i].CreatedAt).Before(timeOf(out[j].CreatedAt))
	})
	writeJSON(w, http.StatusOK, out)
}

func timeOf(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func (s *Store) createPost(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, RouteCreatePost) {
		return
	}
	sub, err := parseForm(r)
	if err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	userID, _ := first(sub.Fields, "userId")
	desc, _ := first(sub.Fields, "description")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}
	names, err := s.storeFiles(r, "files", &sub)
	if err != nil {
		http.Error(w, "failed to store files", http.StatusInternalServerError)
		return
	}
	now := s.now().UTC()
	p := api.PostDTO{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: desc,
		MediaIDs:    append([]string{}, names...),
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}
	applyPostFields(&p, sub.Fields)
	s.mu.Lock()
	s.posts[p.ID] = p
	s.forms[RouteCreatePost] = sub
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, p)
}

func applyPostFields(p *api.PostDTO, fields map[string][]string) {
	if v, ok := first(fields, "description"); ok {
		p.Description = v
	}
	if v, ok := first(fields, "postType"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			p.PostType = n
		}
	}
	if v, ok := first(fields, "title"); ok {
		p.Title = v
	}
	if v, ok := first(fields, "skill"); ok {
		p.Skill = v
	}
	if v, ok := fields["resources"]; ok {
		p.Resources = append([]string(nil), v...)
	}
	if v, ok := first(fields, "challenges"); ok {
		p.Challenges = v
	}
	if v, ok := first(fields, "nextGoal"); ok {
		p.NextGoal = v
	}
}

func (s *Store) ownedPost(w http.ResponseWriter, r *http.Request) (api.PostDTO, bool) {
	userID := chi.URLParam(r, "userId")
	postID := chi.URLParam(r, "postId")
	s.mu.Lock()
	p, ok := s.posts[postID]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "post not found", http.StatusNotFound)
		return api.PostDTO{}, false
	}
	if p.UserID != userID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return api.PostDTO{}, false
	}
	return p, true
}

func (s *Store) getPost(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, RouteGetPost) {
		return
	}
	p, ok := s.ownedPost(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Store) updatePost(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, RouteUpdatePost) {
		return
	}
	p, ok := s.ownedPost(w, r)
	if !ok {
		return
	}
	sub, err := parseForm(r)
	if err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	applyPostFields(&p, sub.Fields)

	// удаление отсутствующего файла - не ошибка
	for _, name := range sub.Fields["toBeDeletedMediaIds"] {
		kept := p.MediaIDs[:0:0]
		for _, m := range p.MediaIDs {
			if m != name {
				kept = append(kept, m)
			}
		}
		p.MediaIDs = kept
		s.mu.Lock()
		delete(s.media, name)
		s.mu.Unlock()
	}
	names, err := s.storeFiles(r, "newFiles", &sub)
	if err != nil {
		http.Error(w, "failed to store files", http.StatusInternalServerError)
		return
	}
	p.MediaIDs = append(p.MediaIDs, names...)
	now := s.now().UTC()
	p.UpdatedAt = &now

	s.mu.Lock()
	s.posts[p.ID] = p
	s.forms[RouteUpdatePost] = sub
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, p)
}

func (s *Store) deletePost(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, RouteDeletePost) {
		return
	}
	p, ok := s.ownedPost(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	for _, m := range p.MediaIDs {
		delete(s.media, m)
	}
	delete(s.posts, p.ID)
	s.mu.Unlock()
	_, _ = w.Write([]byte("Post deleted successfully"))
}

func (s *Store) getMedia(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, RouteMedia) {
		return
	}
	name := chi.URLParam(r, "filename")
	s.mu.Lock()
	data, ok := s.media[name]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "File not found: "+name, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	_, _ = w.Write(data)
}
