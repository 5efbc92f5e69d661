// Package transport holds the HTTP handlers of the public site, the admin
// back-office and the JSON content API.
package transport

import (
	"errors"
	"net/http"
	"strconv"

	"pycsa-web/internal/auth"
	"pycsa-web/internal/form"
	"pycsa-web/internal/media"
	"pycsa-web/internal/repository"
	"pycsa-web/internal/service"
	"pycsa-web/internal/web"

	"github.com/go-chi/chi/v5"
)

// Submission outcomes recorded in the form metrics.
const (
	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)

// errorPage is the data of the error template.
type errorPage struct {
	Message   string
	BackURL   string
	BackLabel string
}

// idParam reads a positive integer route parameter.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryID reads a positive integer query value, 0 when absent or invalid.
func queryID(r *http.Request, key string) int64 {
	id, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// isNotFound reports whether err is one of the repository not-found errors.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrProductNotFound) ||
		errors.Is(err, repository.ErrServiceNotFound) ||
		errors.Is(err, repository.ErrBlogNotFound) ||
		errors.Is(err, repository.ErrDeliveryZoneNotFound)
}

// statusFor maps a submit error to the status of the re-rendered form.
func statusFor(err error) int {
	var (
		formErr  *form.Error
		limitErr *media.LimitError
	)
	switch {
	case errors.As(err, &formErr), errors.As(err, &limitErr), errors.Is(err, service.ErrImagesRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errMalformedForm):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateSKU):
		return http.StatusConflict
	case isNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// outcome classifies a submit error for the metrics.
func outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	if statusFor(err) == http.StatusUnprocessableEntity {
		return outcomeInvalid
	}
	return outcomeError
}

// view builds the page data, taking the admin identity from the context.
func view(r *http.Request, title, nav string, data any) *web.View {
	v := &web.View{Title: title, Nav: nav, Data: data}
	if id, ok := auth.FromContext(r.Context()); ok {
		v.User = id
	}
	return v
}
