package domain

import "time"

// Region is a two-level administrative unit (state, district). The pair is
// unique; everything in the pipeline is keyed by region and week.
type Region struct {
	ID        int64     `db:"id"`
	State     string    `db:"state"`
	District  string    `db:"district"`
	Latitude  *float64  `db:"latitude"`
	Longitude *float64  `db:"longitude"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
