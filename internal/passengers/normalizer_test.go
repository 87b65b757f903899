package passengers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/tripquery/internal/models"
)

func TestExtract(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		text string
		want models.PassengerMix
	}{
		{
			text: "with 2 adults and 1 child who is 5 years old",
			want: models.PassengerMix{Adults: 2, ChildrenAges: []int{5}},
		},
		{
			text: "two seniors and a student",
			want: models.PassengerMix{Seniors: 2, Students: 1, ChildrenAges: []int{}},
		},
		{
			text: "2 adults with a lap infant",
			want: models.PassengerMix{Adults: 2, ChildrenAges: []int{}, InfantsOnLap: 1},
		},
		{
			text: "2 adults, kids aged 4 and 9",
			want: models.PassengerMix{Adults: 2, ChildrenAges: []int{4, 9}},
		},
		{
			text: "2 adults and a 1 year old",
			want: models.PassengerMix{Adults: 2, ChildrenAges: []int{}, InfantsOnSeat: 1},
		},
		{
			text: "one adult and two 7 year olds",
			want: models.PassengerMix{Adults: 1, ChildrenAges: []int{7, 7}},
		},
		{
			text: "3 people including 1 child",
			want: models.PassengerMix{Adults: 2, ChildrenAges: []int{DefaultChildAge}},
		},
		{
			text: "me and my wife",
			want: models.PassengerMix{Adults: 2, ChildrenAges: []int{}},
		},
		{
			text: "my wife and I with our 2 kids",
			want: models.PassengerMix{Adults: 2, ChildrenAges: []int{DefaultChildAge, DefaultChildAge}},
		},
		{
			text: "JFK to LAX next week",
			want: models.PassengerMix{Adults: 1, ChildrenAges: []int{}},
		},
		{
			text: "2 adults and 2 children, ages 4 and 6",
			want: models.PassengerMix{Adults: 2, ChildrenAges: []int{4, 6}},
		},
		{
			text: "2 adults and 2 kids (5 and 7) from Boston",
			want: models.PassengerMix{Adults: 2, ChildrenAges: []int{5, 7}},
		},
		{
			text: "one adult with 2 kids, 9 and 12",
			want: models.PassengerMix{Adults: 1, ChildrenAges: []int{9, 12}},
		},
		{
			text: "2 adults and 2 kids for 3 nights",
			want: models.PassengerMix{Adults: 2, ChildrenAges: []int{DefaultChildAge, DefaultChildAge}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ex, err := n.Extract(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ex.Mix)
			assert.NoError(t, ex.Mix.Validate())
		})
	}
}

func TestExtractSources(t *testing.T) {
	n := NewNormalizer()

	ex, err := n.Extract("JFK to LAX next week")
	require.NoError(t, err)
	assert.Equal(t, models.SourceDefaulted, ex.Sources[models.FieldAdults])

	ex, err = n.Extract("I'm traveling with my partner")
	require.NoError(t, err)
	assert.Equal(t, 2, ex.Mix.Adults)
	assert.Equal(t, models.SourceInferred, ex.Sources[models.FieldAdults])

	ex, err = n.Extract("2 adults and 1 child")
	require.NoError(t, err)
	assert.Equal(t, models.SourceStated, ex.Sources[models.FieldAdults])
	assert.Equal(t, models.SourceStated, ex.Sources[models.FieldChildrenAges])
	assert.Contains(t, ex.Adjustments, "child age not given, assumed 8")
}

func TestExtractAdjusts(t *testing.T) {
	n := NewNormalizer()

	ex, err := n.Extract("12 adults")
	require.NoError(t, err)
	assert.Equal(t, models.MaxPerAdultCategory, ex.Mix.Adults)
	assert.Contains(t, ex.Adjustments, "adults reduced from 12 to 9")

	ex, err = n.Extract("1 adult with 2 lap infants")
	require.NoError(t, err)
	assert.Equal(t, 1, ex.Mix.InfantsOnLap)
	assert.Equal(t, 1, ex.Mix.InfantsOnSeat)
	assert.NoError(t, ex.Mix.Validate())
}

func TestExtractMinorsAlone(t *testing.T) {
	n := NewNormalizer()

	for _, text := range []string{
		"Find a flight from Boston to Miami next Friday for just an infant on my lap",
		"a 5 year old flying alone",
		"two kids",
	} {
		t.Run(text, func(t *testing.T) {
			_, err := n.Extract(text)
			var mixErr *models.PassengerMixError
			require.True(t, errors.As(err, &mixErr), "got %v", err)
		})
	}
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer()

	mix, adjustments, err := n.Normalize(models.PassengerMix{
		Adults:       1,
		ChildrenAges: []int{1, 5, 20, 3, 4, 5, 6, 7, 8, 9},
		InfantsOnLap: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5, 17, 3, 4, 5, 6, 7}, mix.ChildrenAges)
	assert.Equal(t, 1, mix.InfantsOnLap)
	assert.Equal(t, 2, mix.InfantsOnSeat)
	assert.NotEmpty(t, adjustments)
	assert.NoError(t, mix.Validate())

	_, _, err = n.Normalize(models.PassengerMix{InfantsOnSeat: 1})
	var mixErr *models.PassengerMixError
	assert.True(t, errors.As(err, &mixErr))
}

func TestValidateRejectsInsteadOfClamping(t *testing.T) {
	n := NewNormalizer()

	err := n.Validate(models.PassengerMix{Adults: 10})
	var vErr *models.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, models.FieldAdults, vErr.Field)

	err = n.Validate(models.PassengerMix{ChildrenAges: []int{4}})
	require.True(t, errors.As(err, &vErr))

	assert.NoError(t, n.Validate(models.PassengerMix{Adults: 1, ChildrenAges: []int{4}, InfantsOnLap: 1}))
}
