package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type Frequency string

const (
	FrequencyOnce    Frequency = "once"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

type Unavailability struct {
	bun.BaseModel `bun:"table:unavailability"`

	ID        int64     `bun:"id,pk,autoincrement"`
	DoctorID  int64     `bun:"doctor_id,notnull"`
	StartsAt  time.Time `bun:"starts_at,notnull,type:timestamp"`
	EndsAt    time.Time `bun:"ends_at,notnull,type:timestamp"`
	Frequency Frequency `bun:"frequency,notnull"`
	Reason    *string   `bun:"reason"`
	CreatedAt time.Time `bun:"created_at,notnull,type:timestamp"`
}

func (u *Unavailability) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	stampCreated(&u.CreatedAt, query)
	return nil
}

func (u Unavailability) Interval() Interval {
	return Interval{Start: u.StartsAt, End: u.EndsAt}
}

func (u Unavailability) Recurring() bool {
	return u.Frequency != FrequencyOnce
}
