package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/tripquery/internal/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"tripquery", "--now", "2025-03-05"}, args...))
	return out.String(), err
}

func TestInterpretCommand(t *testing.T) {
	out, err := run(t, "interpret", "from New York to Istanbul on June 15, 2025 returning June 29, 2025 with 2 adults and 1 child who is 5 years old")
	require.NoError(t, err)

	var resp models.AISearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "https://www.kayak.com/flights/JFK-IST/2025-06-15/2025-06-29/2adults/children-5?sort=bestflight_a", resp.BookingURL)
}

func TestLinkCommand(t *testing.T) {
	out, err := run(t, "link",
		"--from", "London", "--to", "CDG",
		"--depart", "2025-04-01", "--return", "2025-04-08",
		"--adults", "1", "--child-age", "7", "--child-age", "3", "--infants-lap", "1")
	require.NoError(t, err)
	assert.Equal(t, "https://www.kayak.com/flights/LHR-CDG/2025-04-01/2025-04-08/1adults/children-7-3-1L?sort=bestflight_a", strings.TrimSpace(out))

	_, err = run(t, "link", "--from", "JFK", "--to", "JFK", "--depart", "2025-04-01", "--return", "2025-04-08")
	assert.Error(t, err)
}

func TestAirportCommand(t *testing.T) {
	out, err := run(t, "airport", "Istanbul")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "IST\t"), out)

	_, err = run(t, "airport", "Atlantis")
	assert.Error(t, err)
}

func TestBadNowFlag(t *testing.T) {
	var out bytes.Buffer
	err := newApp(&out).Run([]string{"tripquery", "--now", "tomorrow", "airport", "JFK"})
	assert.Error(t, err)
}
