package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type AppointmentStatus string

const (
	StatusBooked      AppointmentStatus = "booked"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusCompleted   AppointmentStatus = "completed"
	StatusRescheduled AppointmentStatus = "rescheduled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusBooked, StatusCancelled, StatusCompleted, StatusRescheduled:
		return true
	}
	return false
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID          int64             `bun:"id,pk,autoincrement"`
	DoctorID    int64             `bun:"doctor_id,notnull"`
	PatientName string            `bun:"patient_name,notnull"`
	Email       string            `bun:"email,notnull"`
	Reason      *string           `bun:"reason"`
	StartsAt    time.Time         `bun:"starts_at,notnull,type:timestamp"`
	EndsAt      time.Time         `bun:"ends_at,notnull,type:timestamp"`
	Status      AppointmentStatus `bun:"status,notnull"`
	CreatedAt   time.Time         `bun:"created_at,notnull,type:timestamp"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if a.Status == "" {
		a.Status = StatusBooked
	}
	stampCreated(&a.CreatedAt, query)
	return nil
}

func (a Appointment) Interval() Interval {
	return Interval{Start: a.StartsAt, End: a.EndsAt}
}

func (a Appointment) Date() string      { return FormatDate(a.StartsAt) }
func (a Appointment) StartTime() string { return FormatClock(a.StartsAt) }
func (a Appointment) EndTime() string   { return FormatClock(a.EndsAt) }

// Blocking reports whether the appointment occupies the doctor's time.
func (a Appointment) Blocking() bool {
	return a.Status != StatusCancelled
}
