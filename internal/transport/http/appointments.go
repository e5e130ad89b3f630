package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/service/appointments"
)

type appointmentsHandler struct {
	svc appointmentsService
	log *slog.Logger
}

func newAppointmentsHandler(svc appointmentsService, log *slog.Logger) *appointmentsHandler {
	return &appointmentsHandler{svc: svc, log: log.With(slog.String("component", "http.appointments"))}
}

func (h *appointmentsHandler) routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createAppointmentRequest struct {
	DoctorID        int64   `json:"doctorId" validate:"required,gt=0"`
	PatientName     string  `json:"patientName" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Reason          *string `json:"reason" validate:"omitempty,min=1"`
	AppointmentDate string  `json:"appointmentDate" validate:"required,datetime=2006-01-02"`
	StartTime       string  `json:"startTime" validate:"required,datetime=15:04:05"`
	EndTime         string  `json:"endTime" validate:"required,datetime=15:04:05"`
	Status          string  `json:"status" validate:"omitempty,oneof=booked cancelled completed rescheduled"`
}

type updateAppointmentRequest struct {
	DoctorID        *int64  `json:"doctorId" validate:"omitempty,gt=0"`
	PatientName     *string `json:"patientName" validate:"omitempty,min=1"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Reason          *string `json:"reason" validate:"omitempty,min=1"`
	AppointmentDate *string `json:"appointmentDate" validate:"omitempty,datetime=2006-01-02"`
	StartTime       *string `json:"startTime" validate:"omitempty,datetime=15:04:05"`
	EndTime         *string `json:"endTime" validate:"omitempty,datetime=15:04:05"`
	Status          *string `json:"status" validate:"omitempty,oneof=booked cancelled completed rescheduled"`
}

func (req updateAppointmentRequest) patch() appointments.Patch {
	p := appointments.Patch{
		DoctorID:    req.DoctorID,
		PatientName: req.PatientName,
		Email:       req.Email,
		Reason:      req.Reason,
		Date:        req.AppointmentDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if req.Status != nil {
		st := domain.AppointmentStatus(*req.Status)
		p.Status = &st
	}
	return p
}

func (h *appointmentsHandler) list(w http.ResponseWriter, r *http.Request) {
	appts, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.log, "appointments list", err)
		return
	}
	out := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointment(a))
	}
	h.log.Debug("appointments listed", slog.Int("count", len(out)))
	writeJSON(w, http.StatusOK, out)
}

func (h *appointmentsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, "appointment get", err, slog.Int64("appointment_id", id))
		return
	}
	writeJSON(w, http.StatusOK, toAppointment(a))
}

func (h *appointmentsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	a, err := h.svc.Create(r.Context(), appointments.CreateInput{
		DoctorID:    req.DoctorID,
		PatientName: req.PatientName,
		Email:       req.Email,
		Reason:      req.Reason,
		Date:        req.AppointmentDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      domain.AppointmentStatus(req.Status),
	})
	if err != nil {
		writeServiceError(w, h.log, "appointment create", err,
			slog.Int64("doctor_id", req.DoctorID),
			slog.String("date", req.AppointmentDate),
			slog.String("start_time", req.StartTime),
			slog.String("end_time", req.EndTime),
		)
		return
	}

	h.log.Info(
		"appointment created",
		slog.Int64("appointment_id", a.ID),
		slog.Int64("doctor_id", a.DoctorID),
		slog.Time("starts_at", a.StartsAt),
		slog.Time("ends_at", a.EndsAt),
	)
	writeJSON(w, http.StatusCreated, toAppointment(a))
}

func (h *appointmentsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	var req updateAppointmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	update := h.svc.Update
	if force {
		update = h.svc.ForceUpdate
	}
	a, err := update(r.Context(), id, req.patch())
	if err != nil {
		writeServiceError(w, h.log, "appointment update", err,
			slog.Int64("appointment_id", id),
			slog.Bool("force", force),
		)
		return
	}

	h.log.Info(
		"appointment updated",
		slog.Int64("appointment_id", a.ID),
		slog.Bool("force", force),
		slog.String("status", string(a.Status)),
	)
	writeJSON(w, http.StatusOK, toAppointment(a))
}

func (h *appointmentsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, "appointment delete", err, slog.Int64("appointment_id", id))
		return
	}
	h.log.Info("appointment deleted", slog.Int64("appointment_id", deleted))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Appointment deleted successfully", ID: deleted})
}
