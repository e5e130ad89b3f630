package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/store"
)

var specialties = []string{
	"General Practice",
	"Cardiology",
	"Dermatology",
	"Pediatrics",
	"Orthopedics",
	"Neurology",
	"Ophthalmology",
	"Psychiatry",
}

type seeded struct {
	doctors  []domain.Doctor
	services []domain.Service
}

// seed creates nDoctors fake doctors and nServices services, each offered by
// up to three of the new doctors.
func seed(ctx context.Context, doctors store.DoctorRepository, services store.ServiceRepository, nDoctors, nServices int) (seeded, error) {
	var out seeded

	for i := 0; i < nDoctors; i++ {
		name := gofakeit.Name()
		email := gofakeit.Email()
		phone := gofakeit.Phone()
		d, err := doctors.CreateDoctor(ctx, domain.Doctor{
			Name:  "Dr. " + name,
			Title: specialties[gofakeit.Number(0, len(specialties)-1)],
			Link:  "https://clinic.example/doctors/" + strings.ToLower(strings.ReplaceAll(name, " ", "-")),
			Phone: &phone,
			Email: &email,
		})
		if err != nil {
			return out, fmt.Errorf("create doctor: %w", err)
		}
		out.doctors = append(out.doctors, d)
	}

	for i := 0; i < nServices; i++ {
		var ids []int64
		if n := len(out.doctors); n > 0 {
			for j := 0; j < gofakeit.Number(1, min(3, n)); j++ {
				ids = append(ids, out.doctors[gofakeit.Number(0, n-1)].ID)
			}
		}
		title := specialties[i%len(specialties)] + " consultation"
		s, err := services.CreateService(ctx, domain.Service{
			Title:   title,
			Context: "Offered at the " + gofakeit.City() + " office of " + gofakeit.Company(),
		}, ids)
		if err != nil {
			return out, fmt.Errorf("create service: %w", err)
		}
		out.services = append(out.services, s)
	}

	return out, nil
}
