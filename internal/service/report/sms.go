package report

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/constants"
)

// SMS reports arrive as a compact hash-delimited line, e.g.
//
//	PHC123#2026-02-09#F23#D10#V5#R12#A6#SD2#BO78#ORSLOW#ABNORM
//
// username, report date, then tagged counts: F fever, D diarrhea,
// V vomiting, R respiratory, A admissions, SD severe dehydration,
// BO bed occupancy, ORS/AB stock levels.
var digits = regexp.MustCompile(`\d+`)

// ParseMessage parses one SMS line into a report request. Any malformed
// token rejects the whole message.
func ParseMessage(text string) (username string, req *domain.SubmitReportRequest, err error) {
	parts := strings.Split(strings.TrimSpace(text), "#")
	if len(parts) < 3 {
		return "", nil, constants.ErrInvalidReport
	}

	username = strings.TrimSpace(parts[0])
	if username == "" {
		return "", nil, constants.ErrInvalidReport
	}

	reportDate, err := time.Parse("2006-01-02", strings.TrimSpace(parts[1]))
	if err != nil {
		return "", nil, constants.ErrInvalidReport
	}

	req = &domain.SubmitReportRequest{ReportDate: reportDate}
	for _, part := range parts[2:] {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if err := applyToken(req, part); err != nil {
			return "", nil, err
		}
	}

	return username, req, nil
}

func applyToken(req *domain.SubmitReportRequest, part string) error {
	number := func() (int, error) {
		m := digits.FindString(part)
		if m == "" {
			return 0, constants.ErrInvalidReport
		}
		return strconv.Atoi(m)
	}

	var err error
	switch {
	case strings.HasPrefix(part, "ORS"):
		req.ORSStockLevel = stockFromToken(part[3:])
	case strings.HasPrefix(part, "AB"):
		req.AntibioticsStockLevel = stockFromToken(part[2:])
	case strings.HasPrefix(part, "BO"):
		var v int
		if v, err = number(); err == nil {
			rate := float64(v)
			req.BedOccupancyRate = &rate
		}
	case strings.HasPrefix(part, "SD"):
		req.SevereDehydrationCases, err = number()
	case strings.HasPrefix(part, "F"):
		req.FeverCases, err = number()
	case strings.HasPrefix(part, "D"):
		req.DiarrheaCases, err = number()
	case strings.HasPrefix(part, "V"):
		req.VomitingCases, err = number()
	case strings.HasPrefix(part, "R"):
		req.RespiratoryCases, err = number()
	case strings.HasPrefix(part, "A"):
		req.HospitalAdmissions, err = number()
	default:
		return constants.ErrInvalidReport
	}
	if err != nil {
		return constants.ErrInvalidReport
	}
	return nil
}

func stockFromToken(val string) string {
	switch {
	case strings.Contains(val, "LOW"):
		return domain.StockLow
	case strings.Contains(val, "OUT"):
		return domain.StockOut
	default:
		return domain.StockNormal
	}
}

// SubmitSMS resolves the sender to a facility and submits the parsed
// report through the usual two-phase path.
func (s *Service) SubmitSMS(ctx context.Context, text string) (*domain.SubmitReportResponse, error) {
	username, req, err := ParseMessage(text)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetFacilityUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrUserNotFound, username)
	}

	return s.Submit(ctx, user.FacilityID, "sms", req)
}
