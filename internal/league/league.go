package league

import (
	"time"

	"github.com/google/uuid"

	"github.com/parklandpickleball/ppl-playoffs/internal/bracket"
)

type Season struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type Division struct {
	ID              uuid.UUID      `db:"id"`
	SeasonID        uuid.UUID      `db:"season_id"`
	Name            string         `db:"name"`
	Format          bracket.Format `db:"format"`
	SeedingLockedAt *time.Time     `db:"seeding_locked_at"`
	CreatedAt       time.Time      `db:"created_at"`
}

// SeedingLocked reports whether the division's seed order is frozen. A
// bracket can only be generated for a locked division.
func (d *Division) SeedingLocked() bool {
	return d.SeedingLockedAt != nil
}

type Team struct {
	ID         uuid.UUID `db:"id"`
	DivisionID uuid.UUID `db:"division_id"`
	Name       string    `db:"name"`
	Seed       int       `db:"seed"`
	CreatedAt  time.Time `db:"created_at"`
}
