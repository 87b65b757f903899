package airports

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/tripquery/internal/models"
)

func TestExtractRoute(t *testing.T) {
	table := defaultTable(t)

	tests := []struct {
		text     string
		from, to string
	}{
		{"I want to fly from New York to Istanbul on June 15, 2025 and return on June 29, 2025", "JFK", "IST"},
		{"Find a flight from Boston to Miami next Friday", "BOS", "MIA"},
		{"Paris to Rome from June 15 to June 29", "CDG", "FCO"},
		{"JFK to LAX next week", "JFK", "LAX"},
		{"fly into Newark from Chicago", "ORD", "EWR"},
		{"between London and Tokyo in two weeks", "LHR", "HND"},
		{"flying out of Gatwick, arriving in Dubai on Monday", "LGW", "DXB"},
		{"from san francisco to seattle", "SFO", "SEA"},
		{"Sabiha Gökçen to Berlin", "SAW", "BER"},
		{"from XYZ to Denver", "XYZ", "DEN"},
		{"BDL to PIT next Friday with 2 adults", "BDL", "PIT"},
		{"cheap BDL-PIT flights", "BDL", "PIT"},
		{"BDL → PIT on May 3", "BDL", "PIT"},
		{"I WANT TO FLY FROM NEW YORK TO ISTANBUL ON JUNE 15", "JFK", "IST"},
		{"FLY TO MAD FROM LAS", "LAS", "MAD"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			route, err := table.ExtractRoute(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.from, route.Endpoints.Leaving)
			assert.Equal(t, tt.to, route.Endpoints.Destination)
		})
	}
}

func TestExtractRouteFailures(t *testing.T) {
	table := defaultTable(t)

	_, err := table.ExtractRoute("two adults next friday")
	assert.ErrorIs(t, err, ErrNoRoute)

	_, err = table.ExtractRoute("to Paris please")
	assert.ErrorIs(t, err, ErrNoRoute)

	route, err := table.ExtractRoute("from Atlantis to Paris")
	var locErr *models.UnknownLocationError
	require.True(t, errors.As(err, &locErr))
	assert.Equal(t, "Atlantis", locErr.Location)
	assert.NotEmpty(t, route.Issues)
}

func TestExtractRouteIgnoresLowercaseCodes(t *testing.T) {
	table := defaultTable(t)

	route, err := table.ExtractRoute("Boston to Miami, the usa trip for two")
	require.NoError(t, err)
	assert.Equal(t, "BOS", route.Endpoints.Leaving)
	assert.Equal(t, "MIA", route.Endpoints.Destination)
	assert.Empty(t, route.Issues)
}

func TestExtractRouteCapitalWordsAreNotCodes(t *testing.T) {
	table := defaultTable(t)

	route, err := table.ExtractRoute("WE WANT TO FLY OUT OF BOSTON TO SEE MIAMI FOR TWO")
	require.NoError(t, err)
	assert.Equal(t, "BOS", route.Endpoints.Leaving)
	assert.Equal(t, "MIA", route.Endpoints.Destination)
	assert.Empty(t, route.Issues)

	_, err = table.ExtractRoute("I NEED TO FLY FOR TWO")
	assert.ErrorIs(t, err, ErrNoRoute)
}
