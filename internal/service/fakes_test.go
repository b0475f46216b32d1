package service

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RealCodeCrafter/trt-backend/internal/domain"
	"github.com/RealCodeCrafter/trt-backend/internal/mail"
	"github.com/RealCodeCrafter/trt-backend/internal/repository"
	"github.com/RealCodeCrafter/trt-backend/internal/storage"
)

// memUserRepo mimics the unique username and single super-admin indexes.
type memUserRepo struct {
	mu        sync.Mutex
	users     []domain.User
	nextID    int64
	createErr error
	// beforeCreate runs inside Create before uniqueness is checked.
	beforeCreate func()
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, u := range r.users {
		if u.Username == user.Username {
			return repository.ErrConflict
		}
		if user.Role == domain.RoleSuperAdmin && u.Role == domain.RoleSuperAdmin {
			return repository.ErrConflict
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users = append(r.users, *user)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindByRole(_ context.Context, role domain.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Role == role {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) countRole(role domain.Role) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n
}

type memPartRepo struct {
	parts     map[int64]*domain.Part
	links     map[int64][]int64
	nextID    int64
	createErr error
}

func newMemPartRepo() *memPartRepo {
	return &memPartRepo{parts: map[int64]*domain.Part{}, links: map[int64][]int64{}}
}

func (r *memPartRepo) Create(_ context.Context, part *domain.Part, categoryIDs []int64) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	part.ID = r.nextID
	cp := *part
	r.parts[part.ID] = &cp
	r.links[part.ID] = categoryIDs
	return nil
}

func (r *memPartRepo) Update(_ context.Context, part *domain.Part, categoryIDs []int64) error {
	if _, ok := r.parts[part.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *part
	r.parts[part.ID] = &cp
	if categoryIDs != nil {
		r.links[part.ID] = categoryIDs
	}
	return nil
}

func (r *memPartRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.parts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.parts, id)
	delete(r.links, id)
	return nil
}

func (r *memPartRepo) GetByID(_ context.Context, id int64) (*domain.Part, error) {
	p, ok := r.parts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPartRepo) ExistsByTrtCode(_ context.Context, trt string, excludeID int64) (bool, error) {
	for id, p := range r.parts {
		if p.TrtCode == trt && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memPartRepo) sorted() []domain.Part {
	out := []domain.Part{}
	for _, p := range r.parts {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memPartRepo) List(context.Context) ([]domain.Part, error) { return r.sorted(), nil }

func (r *memPartRepo) Search(_ context.Context, f domain.PartSearch) ([]domain.Part, error) {
	out := []domain.Part{}
	for _, p := range r.sorted() {
		if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
			continue
		}
		if f.Trt != "" && !strings.EqualFold(p.TrtCode, f.Trt) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memPartRepo) SearchByName(_ context.Context, name string) ([]domain.Part, error) {
	out := []domain.Part{}
	for _, p := range r.sorted() {
		if strings.Contains(strings.ToLower(p.Translations.EN.Name), strings.ToLower(name)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPartRepo) ListByCategory(_ context.Context, categoryID int64) ([]domain.Part, error) {
	out := []domain.Part{}
	for _, p := range r.sorted() {
		for _, c := range r.links[p.ID] {
			if c == categoryID {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (r *memPartRepo) DistinctOEMs(context.Context) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range r.sorted() {
		for _, o := range p.OEMs {
			if !seen[o] {
				seen[o] = true
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func (r *memPartRepo) TrtCodesByOEM(context.Context, string) ([]string, error)   { return []string{}, nil }
func (r *memPartRepo) BrandsByTrtCode(context.Context, string) ([]string, error) { return []string{}, nil }
func (r *memPartRepo) ModelsByBrand(context.Context, string) ([]string, error)   { return []string{}, nil }

func (r *memPartRepo) Count(context.Context) (int64, error) { return int64(len(r.parts)), nil }

func (r *memPartRepo) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	out := []int64{}
	for _, id := range ids {
		if _, ok := r.parts[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

type memCategoryRepo struct {
	categories map[int64]*domain.Category
	links      map[int64][]int64
	nextID     int64
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{categories: map[int64]*domain.Category{}, links: map[int64][]int64{}}
}

func (r *memCategoryRepo) Create(_ context.Context, c *domain.Category, partIDs []int64) error {
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.categories[c.ID] = &cp
	r.links[c.ID] = partIDs
	return nil
}

func (r *memCategoryRepo) Update(_ context.Context, c *domain.Category, partIDs []int64) error {
	if _, ok := r.categories[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	r.categories[c.ID] = &cp
	if partIDs != nil {
		r.links[c.ID] = partIDs
	}
	return nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.categories, id)
	delete(r.links, id)
	return nil
}

func (r *memCategoryRepo) GetByID(_ context.Context, id int64, _ bool) (*domain.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCategoryRepo) List(context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	for _, c := range r.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCategoryRepo) FindByName(_ context.Context, name string, excludeID int64) (*domain.Category, error) {
	for id, c := range r.categories {
		if id != excludeID && (c.Translations.EN.Name == name || c.Translations.RU.Name == name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memCategoryRepo) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	out := []int64{}
	for _, id := range ids {
		if _, ok := r.categories[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// memStore records saved and deleted URLs.
type memStore struct {
	saved   []string
	deleted []string
	saveErr error
	files   map[string]string
}

func newMemStore() *memStore { return &memStore{files: map[string]string{}} }

func (s *memStore) Save(_ context.Context, bucket string, fh *multipart.FileHeader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	url := storage.PublicURL("http://test", bucket, fh.Filename)
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *memStore) Delete(_ context.Context, url string) error {
	s.deleted = append(s.deleted, url)
	return nil
}

func (s *memStore) Open(_ context.Context, bucket, name string) (io.ReadCloser, error) {
	data, ok := s.files[bucket+"/"+name]
	if !ok {
		return nil, storage.ErrImageNotFound
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

type memSender struct {
	sent []mail.Message
	err  error
}

func (s *memSender) Send(_ context.Context, msg mail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

var errBoom = errors.New("boom")
