package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"neighborly/internal/core/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrMissingCategory is returned when a post carries no concrete category.
	ErrMissingCategory = errors.New("post category must be a concrete category")
	// ErrEmptyContent is returned when a post body is empty or whitespace.
	ErrEmptyContent = errors.New("post content must not be empty")
)

// MemoryStore is the authoritative in-memory post collection, newest first.
// It is the only writer of post state; all reads return copies.
type MemoryStore struct {
	mu     sync.RWMutex
	posts  []domain.Post
	logger *zap.Logger
}

// NewMemoryStore creates a store preloaded with the given seed posts. Seeds
// are kept in the order given (the caller is expected to pass newest first).
func NewMemoryStore(seed []domain.Post, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MemoryStore{logger: logger}
	s.posts = append(s.posts, seed...)
	return s
}

// Create validates and prepends a new post. The post is assigned a fresh id,
// zeroed counters and a "Just now" display timestamp; the caller's id and
// counter fields are ignored. Rejected posts leave the store unchanged.
func (s *MemoryStore) Create(p domain.Post) (domain.Post, error) {
	if !p.Category.Concrete() {
		return domain.Post{}, ErrMissingCategory
	}
	if strings.TrimSpace(p.Content) == "" {
		return domain.Post{}, ErrEmptyContent
	}

	p.ID = uuid.NewString()
	p.Likes = 0
	p.Comments = 0
	p.Timestamp = "Just now"
	p.CreatedAt = time.Now()
	if p.Category != domain.CategorySafety {
		p.AlertLevel = ""
	}

	s.mu.Lock()
	s.posts = append([]domain.Post{p}, s.posts...)
	s.mu.Unlock()

	s.logger.Info("post created",
		zap.String("id", p.ID),
		zap.String("category", string(p.Category)))
	return p, nil
}

// Delete removes the post with the given id. Unknown ids are a no-op; the
// admin flow owns any confirmation step, the store applies none.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.posts {
		if p.ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			s.logger.Info("post deleted", zap.String("id", id))
			return
		}
	}
}

// ListByCategory returns posts matching the category in store order.
// CategoryAll returns everything.
func (s *MemoryStore) ListByCategory(c domain.Category) []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if c == domain.CategoryAll || p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// Contents returns the bodies of all posts, newest first. Used as the corpus
// for trend analysis.
func (s *MemoryStore) Contents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p.Content)
	}
	return out
}

// Len reports the number of stored posts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}
