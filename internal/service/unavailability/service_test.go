package unavailability

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/service"
	"clinic/backend/internal/store/memory"
)

var fixedNow = time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, domain.Doctor) {
	t.Helper()
	st := memory.New()
	doc, err := st.CreateDoctor(context.Background(), domain.Doctor{Name: "Ada", Title: "GP", Link: "https://clinic.example/ada"})
	if err != nil {
		t.Fatalf("CreateDoctor error: %v", err)
	}
	return NewService(st, st, WithClock(func() time.Time { return fixedNow })), doc
}

func wantValidation(t *testing.T, err error, msg string) {
	t.Helper()
	var vErr *service.ValidationError
	if !errors.As(err, &vErr) || vErr.Error() != msg {
		t.Fatalf("error = %v, want validation %q", err, msg)
	}
}

func strPtr(s string) *string { return &s }

func TestCreate_DefaultsWholeDay(t *testing.T) {
	svc, doc := newTestService(t)

	u, err := svc.Create(context.Background(), CreateInput{
		DoctorID:  doc.ID,
		StartDate: "2024-12-03",
		EndDate:   "2024-12-03",
		Frequency: domain.FrequencyOnce,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got := domain.FormatDateTime(u.StartsAt); got != "2024-12-03 00:00:00" {
		t.Fatalf("start = %s", got)
	}
	if got := domain.FormatDateTime(u.EndsAt); got != "2024-12-03 23:59:59" {
		t.Fatalf("end = %s", got)
	}
}

func TestCreate_Rules(t *testing.T) {
	svc, doc := newTestService(t)

	tests := []struct {
		name string
		in   CreateInput
		want string
	}{
		{"past start", CreateInput{DoctorID: doc.ID, StartDate: "2024-12-01", StartTime: "11:00:00", EndDate: "2024-12-02", Frequency: domain.FrequencyOnce}, msgFutureStart},
		{"start now", CreateInput{DoctorID: doc.ID, StartDate: "2024-12-01", StartTime: "12:00:00", EndDate: "2024-12-02", Frequency: domain.FrequencyOnce}, msgFutureStart},
		{"end before start", CreateInput{DoctorID: doc.ID, StartDate: "2024-12-03", StartTime: "10:00:00", EndDate: "2024-12-03", EndTime: "09:00:00", Frequency: domain.FrequencyOnce}, msgEndAfter},
		{"zero length", CreateInput{DoctorID: doc.ID, StartDate: "2024-12-03", StartTime: "10:00:00", EndDate: "2024-12-03", EndTime: "10:00:00", Frequency: domain.FrequencyOnce}, msgEndAfter},
		{"bad frequency", CreateInput{DoctorID: doc.ID, StartDate: "2024-12-03", EndDate: "2024-12-03", Frequency: "yearly"}, msgBadFrequency},
		{"bad date", CreateInput{DoctorID: doc.ID, StartDate: "2024-13-03", EndDate: "2024-12-03", Frequency: domain.FrequencyOnce}, msgBadStart},
		{"unknown doctor", CreateInput{DoctorID: 404, StartDate: "2024-12-03", EndDate: "2024-12-03", Frequency: domain.FrequencyWeekly}, "Doctor not found for id: 404"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.in)
			wantValidation(t, err, tc.want)
		})
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, doc := newTestService(t)

	u, err := svc.Create(ctx, CreateInput{
		DoctorID: doc.ID, StartDate: "2024-12-03", StartTime: "09:00:00",
		EndDate: "2024-12-03", EndTime: "12:00:00", Frequency: domain.FrequencyOnce,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	_, err = svc.Update(ctx, u.ID, Patch{})
	wantValidation(t, err, msgNoFields)

	missingDoctor := int64(55)
	_, err = svc.Update(ctx, u.ID, Patch{DoctorID: &missingDoctor})
	wantValidation(t, err, "Doctor not found for id: 55")

	var nErr *service.NotFoundError
	if _, err := svc.Update(ctx, 999, Patch{Reason: strPtr("x")}); !errors.As(err, &nErr) {
		t.Fatalf("unknown id err = %v, want NotFoundError", err)
	}

	_, err = svc.Update(ctx, u.ID, Patch{StartDate: strPtr("2024-11-30")})
	wantValidation(t, err, msgFutureStart)

	_, err = svc.Update(ctx, u.ID, Patch{EndTime: strPtr("08:00:00")})
	wantValidation(t, err, msgEndAfter)

	weekly := domain.FrequencyWeekly
	got, err := svc.Update(ctx, u.ID, Patch{StartTime: strPtr("10:00:00"), Frequency: &weekly})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if domain.FormatClock(got.StartsAt) != "10:00:00" || domain.FormatClock(got.EndsAt) != "12:00:00" || got.Frequency != weekly {
		t.Fatalf("updated = %+v", got)
	}
}

func TestGetAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, doc := newTestService(t)

	var nErr *service.NotFoundError
	if _, err := svc.Get(ctx, 1); !errors.As(err, &nErr) || err.Error() != msgNotFound {
		t.Fatalf("Get missing err = %v", err)
	}
	if _, err := svc.Delete(ctx, 1); !errors.As(err, &nErr) {
		t.Fatalf("Delete missing err = %v", err)
	}

	u, err := svc.Create(ctx, CreateInput{DoctorID: doc.ID, StartDate: "2024-12-05", EndDate: "2024-12-06", Frequency: domain.FrequencyDaily})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	id, err := svc.Delete(ctx, u.ID)
	if err != nil || id != u.ID {
		t.Fatalf("Delete = %d, %v", id, err)
	}
	list, _ := svc.List(ctx)
	if len(list) != 0 {
		t.Fatalf("list after delete = %+v", list)
	}
}
