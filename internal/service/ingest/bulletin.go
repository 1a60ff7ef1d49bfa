package ingest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/domain/dto"
	"github.com/phip-project/phip/internal/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// BackfillBulletin fetches the weekly environmental bulletin page and upserts
// one env_metrics row per listed district. The page carries one
// table.bulletin per state, caption holding the state name, one tbody row per
// district with rainfall, temperature, humidity and flood risk cells in that
// order. Returns the number of rows stored.
func (s *Service) BackfillBulletin(ctx context.Context, bulletinURL string, week time.Time) (int, error) {
	doc, err := fetchDocument(ctx, bulletinURL)
	if err != nil {
		return 0, fmt.Errorf("fetchDocument: %w", err)
	}

	bulletin := &dto.Bulletin{WeekStart: week}

	eg, egCtx := errgroup.WithContext(ctx)
	doc.Find("table.bulletin").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		stateName := strings.TrimSpace(table.Find("caption").Text())
		if stateName == "" {
			return true
		}

		table.Find("tbody tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
			districtName := strings.TrimSpace(tr.Find("th").Text())
			cells := tr.Find("td")

			eg.Go(func() error {
				reading, parseErr := parseBulletinRow(stateName, districtName, cells)
				if parseErr != nil {
					logger.Errorf(egCtx, "parseBulletinRow, district-%s: %s", districtName, parseErr.Error())
					return fmt.Errorf("parseBulletinRow, district-%s: %w", districtName, parseErr)
				}

				bulletin.PutReading(reading)
				return nil
			})

			return true
		})
		return true
	})

	err = eg.Wait()
	if err != nil {
		return 0, fmt.Errorf("err in goroutine: %w", err)
	}

	saved := 0
	for _, reading := range bulletin.Readings {
		region, err := s.store.UpsertRegion(ctx, reading.State, reading.District, nil, nil)
		if err != nil {
			return saved, fmt.Errorf("store.UpsertRegion, district-%s: %w", reading.District, err)
		}

		metric := &domain.EnvMetric{
			RegionID:     region.ID,
			WeekStart:    bulletin.WeekStart,
			RainfallMM:   reading.RainfallMM,
			TemperatureC: reading.TemperatureC,
			HumidityPct:  reading.HumidityPct,
			FloodRisk:    reading.FloodRisk,
		}
		if err := s.store.UpsertEnvMetric(ctx, metric); err != nil {
			return saved, fmt.Errorf("store.UpsertEnvMetric, district-%s: %w", reading.District, err)
		}

		saved++
	}

	logger.Infof(ctx, "bulletin backfill saved %d readings for week %s", saved, week.Format("2006-01-02"))

	return saved, nil
}

func fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	var resp *http.Response
	err := backoff.Retry(
		func() error {
			var httpErr error

			resp, httpErr = http.Get(url)
			if httpErr != nil {
				return fmt.Errorf("http.Get: %w", httpErr)
			}
			if resp.StatusCode != http.StatusOK {
				resp.Body.Close()
				return fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status)
			}

			return nil
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(100*time.Millisecond), 5),
			ctx,
		),
	)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("goquery.NewDocumentFromReader: %w", err)
	}

	return doc, nil
}

func parseBulletinRow(state, district string, cells *goquery.Selection) (*dto.BulletinReading, error) {
	if district == "" {
		return nil, fmt.Errorf("empty district name")
	}
	if cells.Length() < 4 {
		return nil, fmt.Errorf("expected 4 reading cells, got %d", cells.Length())
	}

	reading := &dto.BulletinReading{State: state, District: district}

	dests := []**float64{
		&reading.RainfallMM,
		&reading.TemperatureC,
		&reading.HumidityPct,
		&reading.FloodRisk,
	}
	for i, dest := range dests {
		val, err := parseCell(cells.Eq(i).Text())
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		*dest = val
	}

	return reading, nil
}

// parseCell reads one numeric bulletin cell. Empty and dash cells mean the
// reading was not taken and come back nil. Values use comma decimal marks.
func parseCell(raw string) (*float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if cleaned == "" || cleaned == "-" || cleaned == "—" {
		return nil, nil
	}

	dec, err := decimal.NewFromString(strings.ReplaceAll(cleaned, ",", "."))
	if err != nil {
		return nil, fmt.Errorf("failed to parse cell value %q: %w", raw, err)
	}

	val := dec.Round(2).InexactFloat64()
	return &val, nil
}
