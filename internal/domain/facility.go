package domain

import "time"

const (
	FacilityTypePHC      = "PHC"
	FacilityTypeHospital = "Hospital"
	FacilityTypeClinic   = "Clinic"
)

type Facility struct {
	ID        string    `db:"id"`
	RegionID  int64     `db:"region_id"`
	Name      string    `db:"name"`
	Type      string    `db:"type"`
	Latitude  *float64  `db:"latitude"`
	Longitude *float64  `db:"longitude"`
	CreatedAt time.Time `db:"created_at"`
}

type FacilityUser struct {
	ID           string    `db:"id"`
	FacilityID   string    `db:"facility_id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}
