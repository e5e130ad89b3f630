package domain

import (
	"time"

	"github.com/uptrace/bun"
)

func stampCreated(createdAt *time.Time, query bun.Query) {
	if _, ok := query.(*bun.InsertQuery); ok && createdAt.IsZero() {
		*createdAt = WallClock(time.Now())
	}
}
