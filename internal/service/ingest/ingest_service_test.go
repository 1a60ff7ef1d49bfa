package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/constants"
	"github.com/phip-project/phip/internal/pkg/store/storetest"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func weekOf(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUpsertEnvironment(t *testing.T) {
	fake := storetest.New()
	svc := NewIngestService(fake)

	region, err := fake.UpsertRegion(context.Background(), "Borno", "Bama", nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.UpsertEnvironment(context.Background(), &domain.EnvMetricRequest{
		State:      "Borno",
		District:   "Bama",
		WeekStart:  weekOf(2026, 2, 8),
		RainfallMM: fptr(120),
	}))

	require.Len(t, fake.EnvMetrics, 1)
	require.Equal(t, region.ID, fake.EnvMetrics[0].RegionID)
	require.Equal(t, 120.0, *fake.EnvMetrics[0].RainfallMM)
	require.Nil(t, fake.EnvMetrics[0].TemperatureC)
}

func TestUpsertEnvironmentPreservesAbsentFields(t *testing.T) {
	fake := storetest.New()
	svc := NewIngestService(fake)

	_, err := fake.UpsertRegion(context.Background(), "Borno", "Bama", nil, nil)
	require.NoError(t, err)

	week := weekOf(2026, 2, 8)
	require.NoError(t, svc.UpsertEnvironment(context.Background(), &domain.EnvMetricRequest{
		State: "Borno", District: "Bama", WeekStart: week,
		RainfallMM: fptr(120), TemperatureC: fptr(31),
	}))
	// the second batch only carries humidity; rainfall must survive
	require.NoError(t, svc.UpsertEnvironment(context.Background(), &domain.EnvMetricRequest{
		State: "Borno", District: "Bama", WeekStart: week,
		HumidityPct: fptr(80),
	}))

	require.Len(t, fake.EnvMetrics, 1)
	require.Equal(t, 120.0, *fake.EnvMetrics[0].RainfallMM)
	require.Equal(t, 31.0, *fake.EnvMetrics[0].TemperatureC)
	require.Equal(t, 80.0, *fake.EnvMetrics[0].HumidityPct)
}

func TestUpsertEnvironmentUnknownRegion(t *testing.T) {
	fake := storetest.New()
	svc := NewIngestService(fake)

	err := svc.UpsertEnvironment(context.Background(), &domain.EnvMetricRequest{
		State: "Kano", District: "Nowhere", WeekStart: weekOf(2026, 2, 8),
	})
	require.ErrorIs(t, err, constants.ErrRegionNotFound)
}

func TestUpsertDiseaseHistory(t *testing.T) {
	fake := storetest.New()
	svc := NewIngestService(fake)

	region, err := fake.UpsertRegion(context.Background(), "Borno", "Bama", nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.UpsertDiseaseHistory(context.Background(), &domain.DiseaseHistoryRequest{
		State: "Borno", District: "Bama", WeekStart: weekOf(2026, 2, 8),
		CholeraCases: iptr(7),
	}))

	require.Len(t, fake.History, 1)
	require.Equal(t, region.ID, fake.History[0].RegionID)
	require.Equal(t, 7, *fake.History[0].CholeraCases)
	require.Nil(t, fake.History[0].MalariaCases)
}

func TestParseCell(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"120.5", fptr(120.5)},
		{"120,5", fptr(120.5)},
		{" 31 ", fptr(31)},
		{"", nil},
		{"-", nil},
		{"—", nil},
	}
	for _, tc := range cases {
		got, err := parseCell(tc.in)
		require.NoError(t, err, "cell %q", tc.in)
		if tc.want == nil {
			require.Nil(t, got, "cell %q", tc.in)
		} else {
			require.NotNil(t, got, "cell %q", tc.in)
			require.InDelta(t, *tc.want, *got, 1e-9)
		}
	}

	_, err := parseCell("not a number")
	require.Error(t, err)
}

const bulletinPage = `<html><body>
<table class="bulletin">
  <caption>Borno</caption>
  <tbody>
    <tr><th>Bama</th><td>120,5</td><td>31</td><td>80</td><td>0.7</td></tr>
    <tr><th>Gwoza</th><td>95</td><td>30</td><td>-</td><td>0.4</td></tr>
  </tbody>
</table>
<table class="bulletin">
  <caption>Kano</caption>
  <tbody>
    <tr><th>Nassarawa</th><td>60</td><td>33</td><td>55</td><td>0.1</td></tr>
  </tbody>
</table>
</body></html>`

func TestBackfillBulletin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(bulletinPage))
	}))
	defer server.Close()

	fake := storetest.New()
	svc := NewIngestService(fake)

	week := weekOf(2026, 2, 8)
	saved, err := svc.BackfillBulletin(context.Background(), server.URL, week)
	require.NoError(t, err)
	require.Equal(t, 3, saved)

	require.Len(t, fake.Regions, 3)
	require.Len(t, fake.EnvMetrics, 3)

	region, err := fake.GetRegion(context.Background(), "Borno", "Bama")
	require.NoError(t, err)

	var metric *domain.EnvMetric
	for _, m := range fake.EnvMetrics {
		if m.RegionID == region.ID {
			metric = m
		}
	}
	require.NotNil(t, metric)
	require.Equal(t, week, metric.WeekStart)
	require.InDelta(t, 120.5, *metric.RainfallMM, 1e-9)
	require.InDelta(t, 31.0, *metric.TemperatureC, 1e-9)
	require.InDelta(t, 0.7, *metric.FloodRisk, 1e-9)

	gwoza, err := fake.GetRegion(context.Background(), "Borno", "Gwoza")
	require.NoError(t, err)
	for _, m := range fake.EnvMetrics {
		if m.RegionID == gwoza.ID {
			require.Nil(t, m.HumidityPct) // dash cell means not taken
		}
	}
}

func TestBackfillBulletinMalformedRow(t *testing.T) {
	page := `<html><body><table class="bulletin"><caption>Borno</caption>
	<tbody><tr><th>Bama</th><td>only</td></tr></tbody></table></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	fake := storetest.New()
	svc := NewIngestService(fake)

	_, err := svc.BackfillBulletin(context.Background(), server.URL, weekOf(2026, 2, 8))
	require.Error(t, err)
	require.Empty(t, fake.EnvMetrics)
}

func TestBackfillBulletinServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fake := storetest.New()
	svc := NewIngestService(fake)

	_, err := svc.BackfillBulletin(context.Background(), server.URL, weekOf(2026, 2, 8))
	require.Error(t, err)
}
