package monitor

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"watchpost/pkg/apperror"
	"watchpost/pkg/utils"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
	log      *zerolog.Logger
}

func NewHandler(service *Service, validate *validator.Validate, log *zerolog.Logger) *Handler {
	return &Handler{service: service, validate: validate, log: log}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var req CreateMonitorRequest
	if !h.decodeAndValidate(w, r, reqID, &req) {
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	mon, err := h.service.Create(r.Context(), CreateMonitorCmd{
		Name:            req.Name,
		URL:             req.URL,
		CheckIntervalMs: req.CheckIntervalMs,
		SSLCheckEnabled: req.SSLCheckEnabled,
		Enabled:         enabled,
	})
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, reqID, "monitor created", toMonitorResponse(*mon))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	monitors, err := h.service.List(r.Context())
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "", toMonitorResponses(monitors))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	id, ok := h.monitorID(w, r, reqID)
	if !ok {
		return
	}
	mon, err := h.service.Get(r.Context(), id)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "", toMonitorResponse(*mon))
}

func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	id, ok := h.monitorID(w, r, reqID)
	if !ok {
		return
	}
	details, err := h.service.Details(r.Context(), id)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "", toDetailsResponse(details))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	id, ok := h.monitorID(w, r, reqID)
	if !ok {
		return
	}
	var req UpdateMonitorRequest
	if !h.decodeAndValidate(w, r, reqID, &req) {
		return
	}

	mon, err := h.service.Update(r.Context(), id, UpdateMonitorCmd{
		Name:            req.Name,
		URL:             req.URL,
		CheckIntervalMs: req.CheckIntervalMs,
		SSLCheckEnabled: req.SSLCheckEnabled,
	})
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "monitor updated", toMonitorResponse(*mon))
}

func (h *Handler) SetState(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	id, ok := h.monitorID(w, r, reqID)
	if !ok {
		return
	}
	var req SetStateRequest
	if !h.decodeAndValidate(w, r, reqID, &req) {
		return
	}

	mon, err := h.service.SetEnabled(r.Context(), id, *req.Enabled)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "monitor state updated", toMonitorResponse(*mon))
}

func (h *Handler) SetPagerdutyKey(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	id, ok := h.monitorID(w, r, reqID)
	if !ok {
		return
	}
	var req SetPagerdutyKeyRequest
	if !h.decodeAndValidate(w, r, reqID, &req) {
		return
	}

	mon, err := h.service.SetPagerdutyKey(r.Context(), id, req.IntegrationKey)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "pagerduty integration key updated", toMonitorResponse(*mon))
}

func (h *Handler) DeletePagerdutyKey(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	id, ok := h.monitorID(w, r, reqID)
	if !ok {
		return
	}
	mon, err := h.service.DeletePagerdutyKey(r.Context(), id)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "pagerduty integration key removed", toMonitorResponse(*mon))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	id, ok := h.monitorID(w, r, reqID)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON[any](w, http.StatusOK, reqID, "monitor deleted", nil)
}

func (h *Handler) ListUptimeEvents(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	id, ok := h.monitorID(w, r, reqID)
	if !ok {
		return
	}
	events, err := h.service.ListUptimeEvents(r.Context(), id, eventLimit(r))
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "", toUptimeEventResponses(events))
}

func (h *Handler) ListSSLEvents(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	id, ok := h.monitorID(w, r, reqID)
	if !ok {
		return
	}
	events, err := h.service.ListSSLEvents(r.Context(), id, eventLimit(r))
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reqID, "", toSSLEventResponses(events))
}

func (h *Handler) monitorID(w http.ResponseWriter, r *http.Request, reqID string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "monitorID"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "monitor id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, reqID string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.log.Debug().Err(err).Msg("request validation failed")
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, err.Error())
		return false
	}
	return true
}

func eventLimit(r *http.Request) int32 {
	const def = 50
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n <= 0 || n > 500 {
		return def
	}
	return int32(n)
}
