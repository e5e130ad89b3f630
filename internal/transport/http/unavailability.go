package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/service/unavailability"
)

type unavailabilityHandler struct {
	svc unavailabilityService
	log *slog.Logger
}

func newUnavailabilityHandler(svc unavailabilityService, log *slog.Logger) *unavailabilityHandler {
	return &unavailabilityHandler{svc: svc, log: log.With(slog.String("component", "http.unavailability"))}
}

func (h *unavailabilityHandler) routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createUnavailabilityRequest struct {
	DoctorID  int64   `json:"doctorId" validate:"required,gt=0"`
	StartDate string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	StartTime string  `json:"startTime" validate:"omitempty,datetime=15:04:05"`
	EndDate   string  `json:"endDate" validate:"required,datetime=2006-01-02"`
	EndTime   string  `json:"endTime" validate:"omitempty,datetime=15:04:05"`
	Frequency string  `json:"frequency" validate:"required,oneof=once daily weekly monthly"`
	Reason    *string `json:"reason"`
}

type updateUnavailabilityRequest struct {
	DoctorID  *int64  `json:"doctorId" validate:"omitempty,gt=0"`
	StartDate *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	StartTime *string `json:"startTime" validate:"omitempty,datetime=15:04:05"`
	EndDate   *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	EndTime   *string `json:"endTime" validate:"omitempty,datetime=15:04:05"`
	Frequency *string `json:"frequency" validate:"omitempty,oneof=once daily weekly monthly"`
	Reason    *string `json:"reason"`
}

func (h *unavailabilityHandler) list(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.log, "unavailability list", err)
		return
	}
	out := make([]unavailabilityResponse, 0, len(rows))
	for _, u := range rows {
		out = append(out, toUnavailability(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *unavailabilityHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, "unavailability get", err, slog.Int64("unavailability_id", id))
		return
	}
	writeJSON(w, http.StatusOK, toUnavailability(u))
}

func (h *unavailabilityHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createUnavailabilityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := h.svc.Create(r.Context(), unavailability.CreateInput{
		DoctorID:  req.DoctorID,
		StartDate: req.StartDate,
		StartTime: req.StartTime,
		EndDate:   req.EndDate,
		EndTime:   req.EndTime,
		Frequency: domain.Frequency(req.Frequency),
		Reason:    req.Reason,
	})
	if err != nil {
		writeServiceError(w, h.log, "unavailability create", err, slog.Int64("doctor_id", req.DoctorID))
		return
	}
	h.log.Info(
		"unavailability created",
		slog.Int64("unavailability_id", u.ID),
		slog.Int64("doctor_id", u.DoctorID),
		slog.String("frequency", string(u.Frequency)),
	)
	writeJSON(w, http.StatusCreated, toUnavailability(u))
}

func (h *unavailabilityHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateUnavailabilityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p := unavailability.Patch{
		DoctorID:  req.DoctorID,
		StartDate: req.StartDate,
		StartTime: req.StartTime,
		EndDate:   req.EndDate,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	}
	if req.Frequency != nil {
		f := domain.Frequency(*req.Frequency)
		p.Frequency = &f
	}

	u, err := h.svc.Update(r.Context(), id, p)
	if err != nil {
		writeServiceError(w, h.log, "unavailability update", err, slog.Int64("unavailability_id", id))
		return
	}
	h.log.Info("unavailability updated", slog.Int64("unavailability_id", id))
	writeJSON(w, http.StatusOK, toUnavailability(u))
}

func (h *unavailabilityHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, "unavailability delete", err, slog.Int64("unavailability_id", id))
		return
	}
	h.log.Info("unavailability deleted", slog.Int64("unavailability_id", deleted))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Unavailability deleted successfully", ID: deleted})
}
