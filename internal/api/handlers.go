// Package api exposes HTTP handlers for the screenshot service.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/screenshot/internal/auth"
	"example.com/screenshot/internal/domain"
)

// filterTimeFormat is the required layout for start/end query parameters.
const filterTimeFormat = "2006-01-02T15:04:05Z"

// DefaultMaxUploadBytes bounds screenshot file size when not configured.
const DefaultMaxUploadBytes = 2 * 1024 * 1024

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service        *domain.Service
	logger         *log.Logger
	maxUploadBytes int64
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, opts ...HandlerOption) *Handler {
	h := &Handler{
		service:        service,
		logger:         log.Default(),
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandlerOption customises a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger overrides the default logger.
func WithHandlerLogger(logger *log.Logger) HandlerOption {
	return func(h *Handler) { h.logger = logger }
}

// WithMaxUploadBytes sets the screenshot file size limit.
func WithMaxUploadBytes(limit int64) HandlerOption {
	return func(h *Handler) {
		if limit > 0 {
			h.maxUploadBytes = limit
		}
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/organizations/{org}/screenshots", h.listScreenshots)
	mux.HandleFunc("POST /v1/organizations/{org}/screenshots", h.createScreenshot)
	mux.HandleFunc("GET /v1/organizations/{org}/screenshots/{id}", h.getScreenshot)
	mux.HandleFunc("DELETE /v1/organizations/{org}/screenshots/{id}", h.deleteScreenshot)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listScreenshots(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	orgID, ok := pathUUID(w, r, "org", "organization not found")
	if !ok {
		return
	}

	in := domain.ListInput{
		OrganizationID: orgID,
		UserID:         claims.Subject,
	}

	query := r.URL.Query()
	if raw := query.Get("member_id"); raw != "" {
		if uuid.Validate(raw) != nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", "member_id must be a UUID")
			return
		}
		in.MemberID = raw
	}
	if raw := query.Get("time_entry_id"); raw != "" {
		if uuid.Validate(raw) != nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", "time_entry_id must be a UUID")
			return
		}
		in.TimeEntryID = raw
	}
	if raw := query.Get("start"); raw != "" {
		ts, err := time.Parse(filterTimeFormat, raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", "start must match "+filterTimeFormat)
			return
		}
		in.Start = &ts
	}
	if raw := query.Get("end"); raw != "" {
		ts, err := time.Parse(filterTimeFormat, raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", "end must match "+filterTimeFormat)
			return
		}
		in.End = &ts
	}
	if raw := query.Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			in.PageNumber = parsed
		}
	}

	screenshots, page, err := h.service.ListScreenshots(r.Context(), in)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	items := make([]ScreenshotView, 0, len(screenshots))
	for _, sc := range screenshots {
		view, err := h.toView(r, sc)
		if err != nil {
			h.logger.Printf("image url for %s: %v", sc.ID, err)
			writeError(w, http.StatusInternalServerError, "server_error", "failed to generate image url")
			return
		}
		items = append(items, view)
	}

	writeJSON(w, http.StatusOK, ListScreenshotsResponse{
		Data: items,
		Meta: PageMeta{Page: page.Number, PerPage: page.Size, Total: page.Total},
	})
}

func (h *Handler) createScreenshot(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	orgID, ok := pathUUID(w, r, "org", "organization not found")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadBytes + 1<<20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse multipart body")
		return
	}

	file, header, err := r.FormFile("screenshot")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "screenshot file is required")
		return
	}
	defer file.Close()

	if header.Size == 0 {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "screenshot file is empty")
		return
	}
	if header.Size > h.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file_too_large",
			"screenshot file exceeds "+strconv.FormatInt(h.maxUploadBytes, 10)+" bytes")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "allowed types: jpeg, png, webp")
		return
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != "" && !allowedExtensions[ext] {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "allowed extensions: .jpg, .jpeg, .png, .webp")
		return
	}

	timeEntryID := r.FormValue("time_entry_id")
	if timeEntryID == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "time_entry_id is required")
		return
	}
	if uuid.Validate(timeEntryID) != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "time_entry_id must be a UUID")
		return
	}

	capturedAtRaw := r.FormValue("captured_at")
	if capturedAtRaw == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "captured_at is required")
		return
	}
	capturedAt, err := time.Parse(time.RFC3339, capturedAtRaw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "captured_at must be a valid RFC3339 datetime")
		return
	}

	screenshot, err := h.service.UploadScreenshot(r.Context(), domain.UploadInput{
		OrganizationID: orgID,
		UserID:         claims.Subject,
		TimeEntryID:    timeEntryID,
		CapturedAt:     capturedAt,
		Filename:       header.Filename,
		ContentType:    contentType,
		Size:           header.Size,
		File:           file,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	view, err := h.toView(r, *screenshot)
	if err != nil {
		h.logger.Printf("image url for %s: %v", screenshot.ID, err)
		writeError(w, http.StatusInternalServerError, "server_error", "failed to generate image url")
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) getScreenshot(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	orgID, ok := pathUUID(w, r, "org", "organization not found")
	if !ok {
		return
	}
	screenshotID, ok := pathUUID(w, r, "id", "screenshot not found")
	if !ok {
		return
	}

	screenshot, err := h.service.GetScreenshot(r.Context(), orgID, claims.Subject, screenshotID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	view, err := h.toView(r, *screenshot)
	if err != nil {
		h.logger.Printf("image url for %s: %v", screenshot.ID, err)
		writeError(w, http.StatusInternalServerError, "server_error", "failed to generate image url")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) deleteScreenshot(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	orgID, ok := pathUUID(w, r, "org", "organization not found")
	if !ok {
		return
	}
	screenshotID, ok := pathUUID(w, r, "id", "screenshot not found")
	if !ok {
		return
	}

	if err := h.service.DeleteScreenshot(r.Context(), orgID, claims.Subject, screenshotID); err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathUUID extracts and validates a UUID path segment. Malformed identifiers
// are reported as not-found, matching route-binding behaviour.
func pathUUID(w http.ResponseWriter, r *http.Request, name, notFoundDetail string) (string, bool) {
	value := r.PathValue(name)
	if uuid.Validate(value) != nil {
		writeError(w, http.StatusNotFound, "not_found", notFoundDetail)
		return "", false
	}
	return value, true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrScreenshotsDisabled):
		writeError(w, http.StatusUnprocessableEntity, "screenshots_disabled", err.Error())
	case errors.Is(err, domain.ErrScreenshotNotFound),
		errors.Is(err, domain.ErrTimeEntryNotFound),
		errors.Is(err, domain.ErrOrganizationNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		h.logger.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

// ScreenshotView exposes the API representation of a screenshot. The image
// URL is a presigned link regenerated on every request.
type ScreenshotView struct {
	ID          string `json:"id"`
	TimeEntryID string `json:"time_entry_id"`
	MemberID    string `json:"member_id"`
	CapturedAt  string `json:"captured_at"`
	ImageURL    string `json:"image_url"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// PageMeta describes the pagination state of a listing response.
type PageMeta struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// ListScreenshotsResponse packages list results.
type ListScreenshotsResponse struct {
	Data []ScreenshotView `json:"data"`
	Meta PageMeta         `json:"meta"`
}

func (h *Handler) toView(r *http.Request, sc domain.Screenshot) (ScreenshotView, error) {
	url, err := h.service.ImageURL(r.Context(), sc)
	if err != nil {
		return ScreenshotView{}, err
	}
	return ScreenshotView{
		ID:          sc.ID,
		TimeEntryID: sc.TimeEntryID,
		MemberID:    sc.MemberID,
		CapturedAt:  formatDateTime(sc.CapturedAt),
		ImageURL:    url,
		CreatedAt:   formatDateTime(sc.CreatedAt),
		UpdatedAt:   formatDateTime(sc.UpdatedAt),
	}, nil
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format(filterTimeFormat)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
