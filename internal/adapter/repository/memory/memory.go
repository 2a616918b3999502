// Package memory provides an in-process URL store with the same contract as the Postgres one.
// It is meant for local runs without a database; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/linkmap/url-shortener/internal/entity"
)

// URLRepository is a mutex-guarded map keyed by short code.
type URLRepository struct {
	mu     sync.RWMutex
	urls   map[string]*entity.URL
	lastID int64
}

func NewURLRepository() *URLRepository {
	return &URLRepository{
		urls: make(map[string]*entity.URL),
	}
}

func clone(url *entity.URL) *entity.URL {
	c := *url
	return &c
}

// touch advances UpdatedAt; a stale timestamp leaves it as is.
func touch(url *entity.URL, updatedAt time.Time) {
	if updatedAt.After(url.UpdatedAt) {
		url.UpdatedAt = updatedAt
	}
}

func (r *URLRepository) Save(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.Save"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.urls[url.ShortCode]; ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
	}

	r.lastID++

	rec := clone(url)
	rec.ID = r.lastID
	rec.AccessCount = 0
	r.urls[rec.ShortCode] = rec

	return clone(rec), nil
}

func (r *URLRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.RetrieveByShortCode"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.urls[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return clone(rec), nil
}

// RetrieveAll returns every record ordered by creation time, newest first; ties go to the higher ID.
func (r *URLRepository) RetrieveAll(ctx context.Context) ([]*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.RetrieveAll"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	urls := make([]*entity.URL, 0, len(r.urls))
	for _, rec := range r.urls {
		urls = append(urls, clone(rec))
	}
	r.mu.RUnlock()

	sort.Slice(urls, func(i, j int) bool {
		if !urls[i].CreatedAt.Equal(urls[j].CreatedAt) {
			return urls[i].CreatedAt.After(urls[j].CreatedAt)
		}
		return urls[i].ID > urls[j].ID
	})

	return urls, nil
}

func (r *URLRepository) Update(ctx context.Context, shortCode, originalURL string, updatedAt time.Time) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.Update"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.urls[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	rec.OriginalURL = originalURL
	touch(rec, updatedAt)

	return clone(rec), nil
}

func (r *URLRepository) IncrementAccessCount(ctx context.Context, shortCode string, updatedAt time.Time) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.IncrementAccessCount"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.urls[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	rec.AccessCount++
	touch(rec, updatedAt)

	return clone(rec), nil
}

func (r *URLRepository) Remove(ctx context.Context, shortCode string) (bool, error) {
	const op = "adapter.repository.memory.URLRepository.Remove"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.urls[shortCode]; !ok {
		return false, nil
	}

	delete(r.urls, shortCode)
	return true, nil
}
