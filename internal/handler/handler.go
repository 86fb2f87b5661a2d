// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-connect/internal/apperror"
	"github.com/Shivanand-hulikatti/campus-connect/internal/auth"
	"github.com/Shivanand-hulikatti/campus-connect/internal/eligibility"
	"github.com/Shivanand-hulikatti/campus-connect/internal/logger"
	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
	"github.com/Shivanand-hulikatti/campus-connect/internal/service"
)

// registrationFailed is shown for any durable store failure; transport
// details never reach the client.
const registrationFailed = "There was an error processing your registration. Please try again."

// EventHandler holds all HTTP handlers for the campus events API.
type EventHandler struct {
	svc *service.EventService
	log *logger.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService, log *logger.Logger) *EventHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &EventHandler{svc: svc, log: log}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func (h *EventHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var inel *apperror.IneligibleError
	switch {
	case errors.Is(err, apperror.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperror.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &inel):
		status := http.StatusConflict
		resp := model.ErrorResponse{Error: err.Error()}
		if o, ok := inel.Outcome.(eligibility.Outcome); ok {
			if o == eligibility.NotAuthenticated {
				status = http.StatusUnauthorized
			}
			resp = model.ErrorResponse{Error: o.Message().Description, Code: o.Code()}
		}
		writeJSON(w, status, resp)
	case errors.Is(err, apperror.ErrRemote):
		writeError(w, http.StatusBadGateway, registrationFailed)
	default:
		h.log.WithContext(r.Context()).Error("unhandled service error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// currentUserID returns the authenticated user's id or "".
func currentUserID(r *http.Request) string {
	u, _ := auth.UserFromContext(r.Context())
	return u.ID
}

// splitList turns repeated and comma-separated query values into one list.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

// ─── Events ───────────────────────────────────────────────────────────────────

// ListEvents handles GET /events
// Query parameters: view (all|featured|upcoming|current), q, category
// (repeated or comma-separated) and sort.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	events, err := h.svc.ListEvents(r.Context(), service.ListParams{
		View:       qs.Get("view"),
		Search:     qs.Get("q"),
		Categories: splitList(qs["category"]),
		Sort:       qs.Get("sort"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Eligibility handles GET /events/{id}/eligibility
// Reports whether the caller is offered registration, and why not.
func (h *EventHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Eligibility(r.Context(), chi.URLParam(r, "id"), currentUserID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Register handles POST /events/{id}/register
// The body carries the attendee details.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.AttendeeInfo
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reg, err := h.svc.Register(r.Context(), chi.URLParam(r, "id"), currentUserID(r), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, reg)
}

// ListCategories handles GET /categories
func (h *EventHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Categories())
}

// ListCategoryEvents handles GET /categories/{category}/events
func (h *EventHandler) ListCategoryEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.EventsByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// ListAnnouncements handles GET /announcements
func (h *EventHandler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	list := h.svc.ListAnnouncements(r.Context())
	if list == nil {
		list = []model.Announcement{}
	}
	writeJSON(w, http.StatusOK, list)
}

// ─── Current user ─────────────────────────────────────────────────────────────

// MyRegistrations handles GET /me/registrations
func (h *EventHandler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	mine, err := h.svc.MyRegistrations(r.Context(), currentUserID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mine)
}

// Notifications handles GET /me/notifications
func (h *EventHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Notifications(r.Context(), currentUserID(r)))
}

// UnreadCount handles GET /me/notifications/unread-count
func (h *EventHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"unreadCount": h.svc.UnreadNotifications(r.Context(), currentUserID(r))})
}

// ForgetNotifications handles DELETE /me/notifications
// Clients call it on sign-out.
func (h *EventHandler) ForgetNotifications(w http.ResponseWriter, r *http.Request) {
	h.svc.ForgetNotifications(r.Context(), currentUserID(r))
	w.WriteHeader(http.StatusNoContent)
}

// RefreshNotifications handles POST /me/notifications/refresh
// Clients call it after login.
func (h *EventHandler) RefreshNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.RefreshNotifications(r.Context(), currentUserID(r)))
}

// MarkNotificationRead handles POST /me/notifications/{id}/read
func (h *EventHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	if err := h.svc.MarkNotificationRead(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Notifications(r.Context(), userID))
}

// MarkAllNotificationsRead handles POST /me/notifications/read-all
func (h *EventHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.MarkAllNotificationsRead(r.Context(), currentUserID(r)))
}

// ─── Admin ────────────────────────────────────────────────────────────────────

// CreateEvent handles POST /admin/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// UpdateEvent handles PATCH /admin/events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.UpdateEvent(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /admin/events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRegistrations handles GET /admin/events/{id}/registrations
func (h *EventHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.RegistrationsForEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

// Dashboard handles GET /admin/dashboard
// Lists every event with its durable registration count.
func (h *EventHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Dashboard(r.Context()))
}

// CreateAnnouncement handles POST /admin/announcements
func (h *EventHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAnnouncementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	u, _ := auth.UserFromContext(r.Context())
	a, err := h.svc.CreateAnnouncement(r.Context(), req, u.Email)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
