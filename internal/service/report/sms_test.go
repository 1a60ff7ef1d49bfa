package report

import (
	"testing"
	"time"

	"github.com/phip-project/phip/internal/domain"
	"github.com/phip-project/phip/internal/pkg/constants"
	"github.com/stretchr/testify/require"
)

func TestParseMessageFull(t *testing.T) {
	username, req, err := ParseMessage("PHC123#2026-02-09#F23#D10#V5#R12#A6#SD2#BO78#ORSLOW#ABNORM")
	require.NoError(t, err)

	require.Equal(t, "PHC123", username)
	require.Equal(t, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), req.ReportDate)
	require.Equal(t, 23, req.FeverCases)
	require.Equal(t, 10, req.DiarrheaCases)
	require.Equal(t, 5, req.VomitingCases)
	require.Equal(t, 12, req.RespiratoryCases)
	require.Equal(t, 6, req.HospitalAdmissions)
	require.Equal(t, 2, req.SevereDehydrationCases)
	require.NotNil(t, req.BedOccupancyRate)
	require.Equal(t, 78.0, *req.BedOccupancyRate)
	require.Equal(t, domain.StockLow, req.ORSStockLevel)
	require.Equal(t, domain.StockNormal, req.AntibioticsStockLevel)
}

func TestParseMessagePartial(t *testing.T) {
	username, req, err := ParseMessage("clinic7#2026-03-01#F4")
	require.NoError(t, err)

	require.Equal(t, "clinic7", username)
	require.Equal(t, 4, req.FeverCases)
	require.Zero(t, req.DiarrheaCases)
	require.Nil(t, req.BedOccupancyRate)
	require.Empty(t, req.ORSStockLevel)
}

func TestParseMessageStockTokens(t *testing.T) {
	_, req, err := ParseMessage("u#2026-03-01#ORSOUT#ABLOW")
	require.NoError(t, err)
	require.Equal(t, domain.StockOut, req.ORSStockLevel)
	require.Equal(t, domain.StockLow, req.AntibioticsStockLevel)
}

func TestParseMessageLowercaseAndSpaces(t *testing.T) {
	username, req, err := ParseMessage("  phc9 # 2026-02-09 # f3 # d1 ")
	require.NoError(t, err)
	require.Equal(t, "phc9", username)
	require.Equal(t, 3, req.FeverCases)
	require.Equal(t, 1, req.DiarrheaCases)
}

func TestParseMessageRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"PHC123",
		"PHC123#2026-02-09",            // no data tokens
		"#2026-02-09#F3",               // empty username
		"PHC123#not-a-date#F3",
		"PHC123#2026-02-09#F",          // tag without digits
		"PHC123#2026-02-09#X12",        // unknown tag
	}
	for _, text := range cases {
		_, _, err := ParseMessage(text)
		require.ErrorIs(t, err, constants.ErrInvalidReport, "text %q", text)
	}
}

func TestParseMessagePrefixOrder(t *testing.T) {
	// SD and BO must not be swallowed by the single-letter tags
	_, req, err := ParseMessage("u#2026-03-01#SD7#BO55#A2#D1")
	require.NoError(t, err)
	require.Equal(t, 7, req.SevereDehydrationCases)
	require.Equal(t, 55.0, *req.BedOccupancyRate)
	require.Equal(t, 2, req.HospitalAdmissions)
	require.Equal(t, 1, req.DiarrheaCases)
	require.Zero(t, req.VomitingCases)
}
