package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type Doctor struct {
	bun.BaseModel `bun:"table:doctors"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Title     string    `bun:"title,notnull"`
	Link      string    `bun:"link,notnull"`
	Profile   *string   `bun:"profile"`
	Phone     *string   `bun:"phone"`
	Email     *string   `bun:"email"`
	CreatedAt time.Time `bun:"created_at,notnull,type:timestamp"`
}

func (d *Doctor) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	stampCreated(&d.CreatedAt, query)
	return nil
}

// DoctorPatch holds the fields of a partial doctor update; nil means unchanged.
type DoctorPatch struct {
	Name    *string
	Title   *string
	Link    *string
	Profile *string
	Phone   *string
	Email   *string
}

func (p DoctorPatch) Empty() bool {
	return p.Name == nil && p.Title == nil && p.Link == nil &&
		p.Profile == nil && p.Phone == nil && p.Email == nil
}

func (p DoctorPatch) Apply(d Doctor) Doctor {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Link != nil {
		d.Link = *p.Link
	}
	if p.Profile != nil {
		d.Profile = p.Profile
	}
	if p.Phone != nil {
		d.Phone = p.Phone
	}
	if p.Email != nil {
		d.Email = p.Email
	}
	return d
}

type Service struct {
	bun.BaseModel `bun:"table:services"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Title     string    `bun:"title,notnull"`
	Context   string    `bun:"context,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,type:timestamp"`

	Doctors []Doctor `bun:"m2m:service_doctors,join:Service=Doctor"`
}

func (s *Service) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	stampCreated(&s.CreatedAt, query)
	return nil
}

type ServicePatch struct {
	Title   *string
	Context *string
}

func (p ServicePatch) Empty() bool {
	return p.Title == nil && p.Context == nil
}

func (p ServicePatch) Apply(s Service) Service {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Context != nil {
		s.Context = *p.Context
	}
	return s
}

// ServiceDoctor links a service to a doctor offering it.
type ServiceDoctor struct {
	bun.BaseModel `bun:"table:service_doctors"`

	ID        int64    `bun:"id,pk,autoincrement"`
	ServiceID int64    `bun:"service_id,notnull"`
	Service   *Service `bun:"rel:belongs-to,join:service_id=id"`
	DoctorID  int64    `bun:"doctor_id,notnull"`
	Doctor    *Doctor  `bun:"rel:belongs-to,join:doctor_id=id"`
}
