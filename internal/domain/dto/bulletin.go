package dto

import (
	"sync"
	"time"
)

// BulletinReading is one region's row parsed from a weekly environmental
// bulletin page.
type BulletinReading struct {
	State        string
	District     string
	RainfallMM   *float64
	TemperatureC *float64
	HumidityPct  *float64
	FloodRisk    *float64
}

// Bulletin accumulates readings from concurrently parsed bulletin tables.
type Bulletin struct {
	WeekStart  time.Time
	Readings   []*BulletinReading
	readingsMx sync.Mutex
}

func (b *Bulletin) PutReading(r *BulletinReading) {
	b.readingsMx.Lock()
	defer b.readingsMx.Unlock()

	b.Readings = append(b.Readings, r)
}
