package http

import (
	"clinic/backend/internal/domain"
)

type doctorResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	Profile   *string `json:"profile"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	CreatedAt string  `json:"createdAt"`
}

func toDoctor(d domain.Doctor) doctorResponse {
	return doctorResponse{
		ID:        d.ID,
		Name:      d.Name,
		Title:     d.Title,
		Link:      d.Link,
		Profile:   d.Profile,
		Phone:     d.Phone,
		Email:     d.Email,
		CreatedAt: domain.FormatDateTime(d.CreatedAt),
	}
}

func toDoctors(ds []domain.Doctor) []doctorResponse {
	out := make([]doctorResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDoctor(d))
	}
	return out
}

type serviceResponse struct {
	ID        int64             `json:"id"`
	Title     string            `json:"title"`
	Context   string            `json:"context"`
	CreatedAt string            `json:"createdAt"`
	Doctors   *[]doctorResponse `json:"doctors,omitempty"`
}

func toService(s domain.Service) serviceResponse {
	out := serviceResponse{
		ID:        s.ID,
		Title:     s.Title,
		Context:   s.Context,
		CreatedAt: domain.FormatDateTime(s.CreatedAt),
	}
	if s.Doctors != nil {
		docs := toDoctors(s.Doctors)
		out.Doctors = &docs
	}
	return out
}

type appointmentResponse struct {
	ID              int64   `json:"id"`
	DoctorID        int64   `json:"doctorId"`
	PatientName     string  `json:"patientName"`
	Email           string  `json:"email"`
	Reason          *string `json:"reason"`
	AppointmentDate string  `json:"appointmentDate"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
}

func toAppointment(a domain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:              a.ID,
		DoctorID:        a.DoctorID,
		PatientName:     a.PatientName,
		Email:           a.Email,
		Reason:          a.Reason,
		AppointmentDate: a.Date(),
		StartTime:       a.StartTime(),
		EndTime:         a.EndTime(),
		Status:          string(a.Status),
		CreatedAt:       domain.FormatDateTime(a.CreatedAt),
	}
}

type unavailabilityResponse struct {
	ID        int64   `json:"id"`
	DoctorID  int64   `json:"doctorId"`
	StartDate string  `json:"startDate"`
	StartTime string  `json:"startTime"`
	EndDate   string  `json:"endDate"`
	EndTime   string  `json:"endTime"`
	Frequency string  `json:"frequency"`
	Reason    *string `json:"reason"`
	CreatedAt string  `json:"createdAt"`
}

func toUnavailability(u domain.Unavailability) unavailabilityResponse {
	return unavailabilityResponse{
		ID:        u.ID,
		DoctorID:  u.DoctorID,
		StartDate: domain.FormatDate(u.StartsAt),
		StartTime: domain.FormatClock(u.StartsAt),
		EndDate:   domain.FormatDate(u.EndsAt),
		EndTime:   domain.FormatClock(u.EndsAt),
		Frequency: string(u.Frequency),
		Reason:    u.Reason,
		CreatedAt: domain.FormatDateTime(u.CreatedAt),
	}
}

type slotResponse struct {
	StartDateTime string   `json:"startDateTime"`
	EndDateTime   string   `json:"endDateTime"`
	IsAvailable   bool     `json:"isAvailable"`
	Sources       []string `json:"sources,omitempty"`
}

func toSlots(slots []domain.Slot) []slotResponse {
	out := make([]slotResponse, 0, len(slots))
	for _, s := range slots {
		resp := slotResponse{
			StartDateTime: domain.FormatDateTime(s.Start),
			EndDateTime:   domain.FormatDateTime(s.End),
			IsAvailable:   s.IsAvailable,
		}
		for _, src := range s.Sources {
			resp.Sources = append(resp.Sources, string(src))
		}
		out = append(out, resp)
	}
	return out
}
