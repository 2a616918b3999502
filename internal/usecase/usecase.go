package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linkmap/url-shortener/internal/entity"
	"github.com/sethvargo/go-retry"
)

var (
	// ErrMaxRetriesExceeded is returned when every generated short code collided with a stored one.
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")
	// ErrEmptyURL is returned when the target URL is missing. Any other string is stored as given.
	ErrEmptyURL = errors.New("url is empty")
)

const (
	defaultMaxAttempts = 5
	collisionBackoff   = 10 * time.Millisecond
)

type urlRepository interface {
	Save(ctx context.Context, url *entity.URL) (*entity.URL, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	RetrieveAll(ctx context.Context) ([]*entity.URL, error)
	Update(ctx context.Context, shortCode, originalURL string, updatedAt time.Time) (*entity.URL, error)
	IncrementAccessCount(ctx context.Context, shortCode string, updatedAt time.Time) (*entity.URL, error)
	Remove(ctx context.Context, shortCode string) (bool, error)
}

type codeGenerator interface {
	Generate() (string, error)
}

// Option configures a URLUseCase.
type Option func(*URLUseCase)

// WithClock replaces the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(uc *URLUseCase) {
		uc.now = now
	}
}

// WithMaxAttempts bounds how many short codes ShortenURL tries before giving up.
func WithMaxAttempts(n uint64) Option {
	return func(uc *URLUseCase) {
		if n > 0 {
			uc.maxAttempts = n
		}
	}
}

// URLUseCase maps short codes to URLs and tracks how often each one is resolved.
// All serialization of concurrent access happens inside the repository.
type URLUseCase struct {
	urlRepo     urlRepository
	codeGen     codeGenerator
	now         func() time.Time
	maxAttempts uint64
}

func New(urlRepo urlRepository, codeGen codeGenerator, opts ...Option) *URLUseCase {
	uc := &URLUseCase{
		urlRepo:     urlRepo,
		codeGen:     codeGen,
		now:         time.Now,
		maxAttempts: defaultMaxAttempts,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// timestamp truncates to microseconds so values round-trip through Postgres unchanged.
func (uc *URLUseCase) timestamp() time.Time {
	return uc.now().UTC().Truncate(time.Microsecond)
}

// ShortenURL stores originalURL under a freshly generated short code.
// A short code collision triggers a new code, up to the configured number of attempts.
func (uc *URLUseCase) ShortenURL(ctx context.Context, originalURL string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	if originalURL == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyURL)
	}

	var url *entity.URL

	backoff := retry.WithMaxRetries(uc.maxAttempts-1, retry.NewConstant(collisionBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		shortCode, err := uc.codeGen.Generate()
		if err != nil {
			return err
		}

		now := uc.timestamp()

		saved, err := uc.urlRepo.Save(ctx, &entity.URL{
			ShortCode:   shortCode,
			OriginalURL: originalURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			if errors.Is(err, entity.ErrShortCodeExists) {
				return retry.RetryableError(err)
			}
			return err
		}

		url = saved
		return nil
	})
	if err != nil {
		if errors.Is(err, entity.ErrShortCodeExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
		}

		return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	return url, nil
}

// ResolveShortCode counts one access to the record and returns it in its post-increment state.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	url, err := uc.urlRepo.IncrementAccessCount(ctx, shortCode, uc.timestamp())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

// RedirectTarget counts one access like ResolveShortCode and returns only the target URL.
func (uc *URLUseCase) RedirectTarget(ctx context.Context, shortCode string) (string, error) {
	const op = "usecase.URLUseCase.RedirectTarget"

	url, err := uc.urlRepo.IncrementAccessCount(ctx, shortCode, uc.timestamp())
	if err != nil {
		return "", fmt.Errorf("%s: failed to resolve redirect target: %w", op, err)
	}

	return url.OriginalURL, nil
}

func (uc *URLUseCase) ModifyURL(ctx context.Context, shortCode, originalURL string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ModifyURL"

	if originalURL == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyURL)
	}

	url, err := uc.urlRepo.Update(ctx, shortCode, originalURL, uc.timestamp())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to modify url: %w", op, err)
	}

	return url, nil
}

func (uc *URLUseCase) DeactivateURL(ctx context.Context, shortCode string) error {
	const op = "usecase.URLUseCase.DeactivateURL"

	removed, err := uc.urlRepo.Remove(ctx, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to deactivate url: %w", op, err)
	}

	if !removed {
		return fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return nil
}

// GetURLStats returns the record as stored, without counting an access.
func (uc *URLUseCase) GetURLStats(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.GetURLStats"

	url, err := uc.urlRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	return url, nil
}

// ListURLs returns every record, newest first.
func (uc *URLUseCase) ListURLs(ctx context.Context) ([]*entity.URL, error) {
	const op = "usecase.URLUseCase.ListURLs"

	urls, err := uc.urlRepo.RetrieveAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list urls: %w", op, err)
	}

	return urls, nil
}
