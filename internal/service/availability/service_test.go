package availability

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/service"
	"clinic/backend/internal/store"
	"clinic/backend/internal/store/memory"
)

func seed(t *testing.T) (*memory.Store, domain.Doctor) {
	t.Helper()
	st := memory.New()
	doc, err := st.CreateDoctor(context.Background(), domain.Doctor{Name: "Ada", Title: "GP", Link: "https://clinic.example/ada"})
	if err != nil {
		t.Fatalf("CreateDoctor error: %v", err)
	}
	return st, doc
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(domain.DateTimeLayout, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func book(t *testing.T, st *memory.Store, a domain.Appointment) {
	t.Helper()
	err := st.InDoctorTransaction(context.Background(), a.DoctorID, func(ctx context.Context, tx store.SchedulingTx) error {
		_, err := tx.InsertAppointment(ctx, a)
		return err
	})
	if err != nil {
		t.Fatalf("InsertAppointment error: %v", err)
	}
}

type slotWant struct {
	start, end string
	free       bool
}

func assertSlots(t *testing.T, got []domain.Slot, want []slotWant) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len(slots) = %d, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		g := got[i]
		if domain.FormatDateTime(g.Start) != w.start || domain.FormatDateTime(g.End) != w.end || g.IsAvailable != w.free {
			t.Fatalf("slot %d = %s..%s free=%v, want %s..%s free=%v", i,
				domain.FormatDateTime(g.Start), domain.FormatDateTime(g.End), g.IsAvailable, w.start, w.end, w.free)
		}
	}
}

func TestList_MondayWithOneAppointment(t *testing.T) {
	st, doc := seed(t)
	book(t, st, domain.Appointment{
		DoctorID: doc.ID, PatientName: "p", Email: "p@example.com",
		StartsAt: at(t, "2024-12-02 09:00:00"), EndsAt: at(t, "2024-12-02 09:30:00"),
	})

	got, err := NewService(st).List(context.Background(), doc.ID, "2024-12-02", "2024-12-02")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	assertSlots(t, got, []slotWant{
		{"2024-12-02 07:00:00", "2024-12-02 09:00:00", true},
		{"2024-12-02 09:00:00", "2024-12-02 09:30:00", false},
		{"2024-12-02 09:30:00", "2024-12-02 17:00:00", true},
	})
}

func TestList_EmptyRangeIsOneFreeSlot(t *testing.T) {
	st, doc := seed(t)

	got, err := NewService(st).List(context.Background(), doc.ID, "2024-12-07", "2024-12-08")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	assertSlots(t, got, []slotWant{
		{"2024-12-07 08:00:00", "2024-12-08 17:00:00", true},
	})
}

func TestList_MergesOverlappingSourcesAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st, doc := seed(t)

	book(t, st, domain.Appointment{
		DoctorID: doc.ID, PatientName: "p", Email: "p@example.com",
		StartsAt: at(t, "2024-12-02 10:00:00"), EndsAt: at(t, "2024-12-02 11:00:00"),
	})
	book(t, st, domain.Appointment{
		DoctorID: doc.ID, PatientName: "c", Email: "c@example.com", Status: domain.StatusCancelled,
		StartsAt: at(t, "2024-12-02 13:00:00"), EndsAt: at(t, "2024-12-02 14:00:00"),
	})
	for _, u := range []domain.Unavailability{
		{DoctorID: doc.ID, StartsAt: at(t, "2024-12-02 10:30:00"), EndsAt: at(t, "2024-12-02 12:00:00"), Frequency: domain.FrequencyOnce},
		{DoctorID: doc.ID, StartsAt: at(t, "2024-12-02 06:00:00"), EndsAt: at(t, "2024-12-02 08:00:00"), Frequency: domain.FrequencyOnce},
	} {
		if _, err := st.CreateUnavailability(ctx, u); err != nil {
			t.Fatalf("CreateUnavailability error: %v", err)
		}
	}

	svc := NewService(st)
	got, err := svc.List(ctx, doc.ID, "2024-12-02", "2024-12-02")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	assertSlots(t, got, []slotWant{
		{"2024-12-02 07:00:00", "2024-12-02 08:00:00", false},
		{"2024-12-02 08:00:00", "2024-12-02 10:00:00", true},
		{"2024-12-02 10:00:00", "2024-12-02 12:00:00", false},
		{"2024-12-02 12:00:00", "2024-12-02 17:00:00", true},
	})
	if want := []domain.SourceKind{domain.SourceAppointment, domain.SourceUnavailability}; !reflect.DeepEqual(got[2].Sources, want) {
		t.Fatalf("merged sources = %v, want %v", got[2].Sources, want)
	}

	again, err := svc.List(ctx, doc.ID, "2024-12-02", "2024-12-02")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if !reflect.DeepEqual(got, again) {
		t.Fatalf("second listing differs:\n%+v\n%+v", got, again)
	}
}

func TestList_RecurringUnavailability(t *testing.T) {
	ctx := context.Background()
	st, doc := seed(t)

	if _, err := st.CreateUnavailability(ctx, domain.Unavailability{
		DoctorID: doc.ID, StartsAt: at(t, "2024-11-25 12:00:00"), EndsAt: at(t, "2024-11-25 13:00:00"), Frequency: domain.FrequencyWeekly,
	}); err != nil {
		t.Fatalf("CreateUnavailability error: %v", err)
	}

	got, err := NewService(st).List(ctx, doc.ID, "2024-12-02", "2024-12-02")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	assertSlots(t, got, []slotWant{
		{"2024-12-02 07:00:00", "2024-12-02 12:00:00", true},
		{"2024-12-02 12:00:00", "2024-12-02 13:00:00", false},
		{"2024-12-02 13:00:00", "2024-12-02 17:00:00", true},
	})

	got, err = NewService(st, WithRecurringExpansion(false)).List(ctx, doc.ID, "2024-12-02", "2024-12-02")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 1 || !got[0].IsAvailable {
		t.Fatalf("expansion disabled: slots = %+v, want one free slot", got)
	}
}

func TestList_Errors(t *testing.T) {
	st, doc := seed(t)
	svc := NewService(st)
	ctx := context.Background()

	var nErr *service.NotFoundError
	if _, err := svc.List(ctx, doc.ID+1, "2024-12-02", "2024-12-02"); !errors.As(err, &nErr) || err.Error() != "Doctor not found" {
		t.Fatalf("unknown doctor err = %v", err)
	}

	var vErr *service.ValidationError
	if _, err := svc.List(ctx, doc.ID, "02/12/2024", "2024-12-02"); !errors.As(err, &vErr) {
		t.Fatalf("malformed date err = %v", err)
	}
	if _, err := svc.List(ctx, doc.ID, "2024-12-03", "2024-12-02"); !errors.As(err, &vErr) || err.Error() != domain.ErrRangeReversed.Error() {
		t.Fatalf("reversed range err = %v", err)
	}
}
