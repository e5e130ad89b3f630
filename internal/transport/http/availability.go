package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type availabilityHandler struct {
	svc availabilityService
	log *slog.Logger
}

func newAvailabilityHandler(svc availabilityService, log *slog.Logger) *availabilityHandler {
	return &availabilityHandler{svc: svc, log: log.With(slog.String("component", "http.availability"))}
}

func (h *availabilityHandler) routes(r chi.Router) {
	r.Get("/{doctorId}", h.list)
}

type availabilityQuery struct {
	StartDate string `query:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `query:"endDate" validate:"required,datetime=2006-01-02"`
}

func (h *availabilityHandler) list(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(w, r, "doctorId")
	if !ok {
		return
	}
	q := availabilityQuery{
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}
	if !validStruct(w, &q) {
		return
	}

	slots, err := h.svc.List(r.Context(), doctorID, q.StartDate, q.EndDate)
	if err != nil {
		writeServiceError(w, h.log, "availability list", err,
			slog.Int64("doctor_id", doctorID),
			slog.String("start_date", q.StartDate),
			slog.String("end_date", q.EndDate),
		)
		return
	}

	h.log.Debug(
		"availability listed",
		slog.Int64("doctor_id", doctorID),
		slog.Int("slots", len(slots)),
	)
	writeJSON(w, http.StatusOK, toSlots(slots))
}
