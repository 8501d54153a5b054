package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/cotizador/quoter/internal/app/logging"
	"github.com/cotizador/quoter/internal/domain/auth"
	"github.com/cotizador/quoter/internal/domain/catalog"
	"github.com/cotizador/quoter/internal/domain/export"
	"github.com/cotizador/quoter/internal/domain/quote"
	"github.com/cotizador/quoter/internal/domain/quote/pipeline"
	"github.com/cotizador/quoter/internal/domain/user"
)

// requestError is a client mistake reported back verbatim with a status.
type requestError struct {
	status int
	code   string
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, code: "bad_request", msg: fmt.Sprintf(format, args...)}
}

func forbidden(msg string) error {
	return &requestError{status: http.StatusForbidden, code: "forbidden", msg: msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

// writeFile sends a fully rendered document as an attachment.
func writeFile(w http.ResponseWriter, f export.File) {
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, f.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Body)
}

// fail maps an error to its HTTP response. Anything unexpected is logged
// and hidden behind a 500.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, funcName string, err error) {
	var (
		reqErr    *requestError
		valErrs   validator.ValidationErrors
		renderErr *quote.RenderError
	)
	switch {
	case errors.As(err, &reqErr):
		writeError(w, reqErr.status, reqErr.code, reqErr.msg)
	case errors.As(err, &valErrs):
		writeError(w, http.StatusBadRequest, "validation_failed", describe(valErrs))
	case errors.As(err, &renderErr):
		h.logError(r, funcName, logrus.Fields{"quote_id": renderErr.QuoteID, "stage": renderErr.Stage}, err)
		writeError(w, http.StatusInternalServerError, "render_failed", fmt.Sprintf("quote %d could not be rendered", renderErr.QuoteID))
	case errors.Is(err, quote.ErrInconsistentTotals):
		h.logError(r, funcName, nil, err)
		writeError(w, http.StatusInternalServerError, "inconsistent_totals", "")
	case errors.Is(err, quote.ErrInvalidInput), errors.Is(err, user.ErrInvalidPhone):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, quote.ErrNotFound), errors.Is(err, user.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, user.ErrConflict), errors.Is(err, catalog.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, catalog.ErrInUse):
		writeError(w, http.StatusConflict, "in_use", err.Error())
	default:
		h.logError(r, funcName, nil, err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func (h *Handlers) logError(r *http.Request, funcName string, data logrus.Fields, err error) {
	if data == nil {
		data = logrus.Fields{}
	}
	data["request_id"] = middleware.GetReqID(r.Context())
	logging.LogError(h.log, "http", funcName, r.Method+" "+r.URL.Path, data, err)
}

func describe(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		s := fe.Namespace() + ": " + fe.Tag()
		if fe.Param() != "" {
			s += "=" + fe.Param()
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// decode reads a JSON body into v and validates it.
func (h *Handlers) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("invalid json: %v", err)
	}
	return h.validate.Struct(v)
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

func principal(r *http.Request) auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}

// scope limits customers to their own quotes; staff see everything.
func scope(p auth.Principal) pipeline.Scope {
	if p.Staff {
		return pipeline.Scope{}
	}
	return pipeline.Scope{UserID: p.UserID}
}
