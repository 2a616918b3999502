package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/linkmap/url-shortener/internal/entity"
	"github.com/linkmap/url-shortener/internal/usecase"
	"github.com/linkmap/url-shortener/pkg/response"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

type urlUseCase interface {
	ShortenURL(ctx context.Context, originalURL string) (*entity.URL, error)
	ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	RedirectTarget(ctx context.Context, shortCode string) (string, error)
	ModifyURL(ctx context.Context, shortCode, originalURL string) (*entity.URL, error)
	DeactivateURL(ctx context.Context, shortCode string) error
	GetURLStats(ctx context.Context, shortCode string) (*entity.URL, error)
	ListURLs(ctx context.Context) ([]*entity.URL, error)
}

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate) *urlHandler {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &urlHandler{
		useCase:  useCase,
		validate: validate,
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, resp response.ErrorResponse) {
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// writeServerError records err on the request log entry; the client only sees resp.
func writeServerError(w http.ResponseWriter, r *http.Request, err error, resp response.ErrorResponse) {
	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
	writeError(w, r, http.StatusInternalServerError, resp)
}

// decodeURLRequest reads and validates the request body. On failure it returns the 400 body to send.
func (h *urlHandler) decodeURLRequest(r *http.Request) (urlRequest, *response.ErrorResponse) {
	var (
		req urlRequest
		err error
	)

	// Form posts are accepted alongside JSON; anything else is decoded as JSON.
	switch render.GetRequestContentType(r) {
	case render.ContentTypeForm:
		err = render.DecodeForm(r.Body, &req)
	default:
		err = render.DecodeJSON(r.Body, &req)
	}

	if err != nil {
		if errors.Is(err, io.EOF) {
			return req, &response.EmptyRequestBodyResponse
		}
		return req, &response.InvalidRequestBodyResponse
	}

	if err := h.validate.Struct(req); err != nil {
		resp := response.ValidationErrorResponse(err)
		return req, &resp
	}

	return req, nil
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	req, badReq := h.decodeURLRequest(r)
	if badReq != nil {
		writeError(w, r, http.StatusBadRequest, *badReq)
		return
	}

	url, err := h.useCase.ShortenURL(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, usecase.ErrEmptyURL) {
			writeError(w, r, http.StatusBadRequest, emptyURLResponse)
			return
		}

		writeServerError(w, r, err, createFailedResponse)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toURLResponse(url))
}

func (h *urlHandler) resolveShortCode(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.ResolveShortCode(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			writeError(w, r, http.StatusNotFound, urlNotFoundResponse)
			return
		}

		writeServerError(w, r, err, retrieveFailedResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLResponse(url))
}

func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	target, err := h.useCase.RedirectTarget(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			writeError(w, r, http.StatusNotFound, redirectNotFoundResponse)
			return
		}

		writeServerError(w, r, err, redirectFailedResponse)
		return
	}

	// http.Redirect would rewrite targets without a scheme relative to this path.
	w.Header().Set("Location", target)
	w.WriteHeader(http.StatusFound)
}

func (h *urlHandler) modifyURL(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	req, badReq := h.decodeURLRequest(r)
	if badReq != nil {
		// An unknown code is reported as such whatever the body holds.
		if _, err := h.useCase.GetURLStats(r.Context(), shortCode); err != nil {
			if errors.Is(err, entity.ErrURLNotFound) {
				writeError(w, r, http.StatusNotFound, urlNotFoundResponse)
				return
			}

			writeServerError(w, r, err, updateFailedResponse)
			return
		}

		writeError(w, r, http.StatusBadRequest, *badReq)
		return
	}

	url, err := h.useCase.ModifyURL(r.Context(), shortCode, req.URL)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrURLNotFound):
			writeError(w, r, http.StatusNotFound, urlNotFoundResponse)
		case errors.Is(err, usecase.ErrEmptyURL):
			writeError(w, r, http.StatusBadRequest, emptyURLResponse)
		default:
			writeServerError(w, r, err, updateFailedResponse)
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLStatsResponse(url))
}

func (h *urlHandler) deactivateURL(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	err := h.useCase.DeactivateURL(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			writeError(w, r, http.StatusNotFound, urlNotFoundResponse)
			return
		}

		writeServerError(w, r, err, deleteFailedResponse)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *urlHandler) getURLStats(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.useCase.GetURLStats(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			writeError(w, r, http.StatusNotFound, urlNotFoundResponse)
			return
		}

		writeServerError(w, r, err, statsFailedResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLStatsResponse(url))
}

func (h *urlHandler) listURLs(w http.ResponseWriter, r *http.Request) {
	urls, err := h.useCase.ListURLs(r.Context())
	if err != nil {
		writeServerError(w, r, err, listFailedResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLStatsResponses(urls))
}
