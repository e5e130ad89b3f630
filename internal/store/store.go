package store

import (
	"context"
	"time"

	"clinic/backend/internal/domain"
)

type DoctorRepository interface {
	CreateDoctor(ctx context.Context, d domain.Doctor) (domain.Doctor, error)
	GetDoctor(ctx context.Context, id int64) (domain.Doctor, error)
	ListDoctors(ctx context.Context) ([]domain.Doctor, error)
	// SearchDoctors returns doctors whose name contains every term, ignoring case.
	SearchDoctors(ctx context.Context, terms []string) ([]domain.Doctor, error)
	UpdateDoctor(ctx context.Context, id int64, patch domain.DoctorPatch) (domain.Doctor, error)
	DeleteDoctor(ctx context.Context, id int64) error
	// MissingDoctorIDs returns the ids in ids that no doctor has, in input order.
	MissingDoctorIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// ServiceRepository stores services and their doctor links. A nil doctorIDs on
// update keeps the current links.
type ServiceRepository interface {
	CreateService(ctx context.Context, s domain.Service, doctorIDs []int64) (domain.Service, error)
	GetService(ctx context.Context, id int64) (domain.Service, error)
	ListServices(ctx context.Context) ([]domain.Service, error)
	UpdateService(ctx context.Context, id int64, patch domain.ServicePatch, doctorIDs []int64) (domain.Service, error)
	DeleteService(ctx context.Context, id int64) error
}

type AppointmentRepository interface {
	GetAppointment(ctx context.Context, id int64) (domain.Appointment, error)
	ListAppointments(ctx context.Context) ([]domain.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error

	// InDoctorTransaction runs fn in a transaction serialized with every other
	// booking for doctorID.
	InDoctorTransaction(ctx context.Context, doctorID int64, fn func(ctx context.Context, tx SchedulingTx) error) error
	// InReadTransaction runs fn against one consistent snapshot. Writes through
	// tx fail.
	InReadTransaction(ctx context.Context, fn func(ctx context.Context, tx SchedulingTx) error) error
}

type UnavailabilityRepository interface {
	CreateUnavailability(ctx context.Context, u domain.Unavailability) (domain.Unavailability, error)
	GetUnavailability(ctx context.Context, id int64) (domain.Unavailability, error)
	ListUnavailability(ctx context.Context) ([]domain.Unavailability, error)
	UpdateUnavailability(ctx context.Context, u domain.Unavailability) (domain.Unavailability, error)
	DeleteUnavailability(ctx context.Context, id int64) error
}

// SchedulingTx is the transactional view used by booking and availability.
// Overlap always means the half-open test start < other.end && end > other.start.
type SchedulingTx interface {
	FindDoctorByID(ctx context.Context, id int64) (domain.Doctor, error)
	// GetAppointmentForUpdate reads an appointment and holds its row until
	// the transaction ends.
	GetAppointmentForUpdate(ctx context.Context, id int64) (domain.Appointment, error)

	// CountOverlappingAppointments counts non-cancelled appointments of the
	// doctor overlapping span. excludeID, when non-zero, is left out.
	CountOverlappingAppointments(ctx context.Context, doctorID int64, span domain.Interval, excludeID int64) (int, error)
	// CountOverlappingUnavailability counts one-off unavailability overlapping span.
	CountOverlappingUnavailability(ctx context.Context, doctorID int64, span domain.Interval) (int, error)
	// ListRecurringUnavailability lists recurring rows whose first occurrence
	// starts before the given time.
	ListRecurringUnavailability(ctx context.Context, doctorID int64, before time.Time) ([]domain.Unavailability, error)

	InsertAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error)
	UpdateAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error)

	FetchAppointmentsInRange(ctx context.Context, doctorID int64, span domain.Interval) ([]domain.Appointment, error)
	FetchUnavailabilityInRange(ctx context.Context, doctorID int64, span domain.Interval) ([]domain.Unavailability, error)
}
