package usecase

import (
	"context"
	"time"

	"github.com/linkmap/url-shortener/internal/entity"
	"github.com/stretchr/testify/mock"
)

type mockURLRepository struct {
	mock.Mock
}

func (r *mockURLRepository) Save(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	args := r.Called(ctx, url)
	saved, _ := args.Get(0).(*entity.URL)
	return saved, args.Error(1)
}

func (r *mockURLRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	args := r.Called(ctx, shortCode)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (r *mockURLRepository) RetrieveAll(ctx context.Context) ([]*entity.URL, error) {
	args := r.Called(ctx)
	urls, _ := args.Get(0).([]*entity.URL)
	return urls, args.Error(1)
}

func (r *mockURLRepository) Update(ctx context.Context, shortCode, originalURL string, updatedAt time.Time) (*entity.URL, error) {
	args := r.Called(ctx, shortCode, originalURL, updatedAt)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (r *mockURLRepository) IncrementAccessCount(ctx context.Context, shortCode string, updatedAt time.Time) (*entity.URL, error) {
	args := r.Called(ctx, shortCode, updatedAt)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (r *mockURLRepository) Remove(ctx context.Context, shortCode string) (bool, error) {
	args := r.Called(ctx, shortCode)
	return args.Bool(0), args.Error(1)
}

// sequenceGenerator hands out codes in order and fails once they run out.
type sequenceGenerator struct {
	codes []string
	err   error
}

func (g *sequenceGenerator) Generate() (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if len(g.codes) == 0 {
		return "", errNoMoreCodes
	}

	code := g.codes[0]
	g.codes = g.codes[1:]
	return code, nil
}
