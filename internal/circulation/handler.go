// internal/circulation/handler.go
package circulation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"libranet/internal/catalog"
	"libranet/internal/eventstore"
)

// Handler-level error codes, in addition to the catalog ones.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeRateLimited     = "RATE_LIMITED"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// BorrowRequest is the body of POST /items/{id}/borrow.
type BorrowRequest struct {
	Duration string `json:"duration"`
}

// ReturnRequest is the body of POST /items/{id}/return.
type ReturnRequest struct {
	LateDays int `json:"late_days"`
}

type Handler struct {
	service Service
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// NewHandler creates an HTTP handler for service. A nil limiter disables rate limiting.
func NewHandler(service Service, limiter *rate.Limiter, log logrus.FieldLogger) *Handler {
	return &Handler{service: service, limiter: limiter, log: log.WithField("component", "http")}
}

// Routes returns the router serving the circulation API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	r.Use(h.rateLimit)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.HandleListItems)
		r.Post("/", h.HandleAddItem)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetItem)
			r.Post("/borrow", h.HandleBorrow)
			r.Post("/return", h.HandleReturn)
			r.Post("/play", h.HandlePlay)
			r.Post("/archive", h.HandleArchive)
			r.Get("/history", h.HandleHistory)
		})
	})

	r.Get("/fines", h.HandleFines)
	r.Get("/events", h.HandleEvents)

	return r
}

func (h *Handler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	var (
		items []catalog.Description
		err   error
	)

	if typeName := r.URL.Query().Get("type"); typeName != "" {
		t, perr := catalog.ParseItemType(typeName)
		if perr != nil {
			h.writeServiceError(w, perr)
			return
		}
		items, err = h.service.FindByType(r.Context(), t)
	} else {
		items, err = h.service.ListItems(r.Context())
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if items == nil {
		items = []catalog.Description{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var req catalog.Description
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, err.Error())
		return
	}

	item, err := catalog.NewItem(req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if err := h.service.AddItem(r.Context(), item); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item.Details())
}

func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) HandleBorrow(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	var req BorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, err.Error())
		return
	}

	res, err := h.service.BorrowItem(r.Context(), id, req.Duration)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	// An empty body means an on-time return.
	var req ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, err.Error())
		return
	}

	res, err := h.service.ReturnItem(r.Context(), id, req.LateDays)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	ev, err := h.service.Play(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ev)
}

func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	ev, err := h.service.Archive(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ev)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	events, err := h.service.History(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) HandleFines(w http.ResponseWriter, r *http.Request) {
	fines, err := h.service.Fines(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, fines)
}

func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	var after int64
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid after sequence")
			return
		}
		after = n
	}

	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid limit")
			return
		}
		limit = min(n, maxEventLimit)
	}

	events, err := h.service.Events(r.Context(), after, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if events == nil {
		events = []eventstore.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.limiter != nil && !h.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request served")
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	code := catalog.Code(err)
	status := statusForCode(code)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
	}
	writeError(w, status, code, err.Error())
}

func statusForCode(code string) int {
	switch code {
	case catalog.CodeItemNotFound:
		return http.StatusNotFound
	case catalog.CodeInvalidDuration, catalog.CodeInvalidItem:
		return http.StatusBadRequest
	case catalog.CodeItemUnavailable, catalog.CodeItemNotBorrowed, catalog.CodeDuplicateID:
		return http.StatusConflict
	case catalog.CodeNotPlayable, catalog.CodeNotArchivable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func itemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid item ID")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}
