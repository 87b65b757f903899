// Package passengers turns traveller descriptions into a PassengerMix.
package passengers

import (
	"fmt"

	"github.com/dharmasatrya/tripquery/internal/models"
)

// DefaultChildAge is used for a child whose age the text does not give.
const DefaultChildAge = 8

// Extraction is the mix read from free text along with how each field
// was obtained.
type Extraction struct {
	Mix         models.PassengerMix
	Sources     map[string]models.FieldSource
	Adjustments []string
}

type Normalizer struct {
	defaultChildAge int
}

func NewNormalizer() *Normalizer {
	return &Normalizer{defaultChildAge: DefaultChildAge}
}

// Validate is the strict path for structured input: out-of-range counts
// are rejected, never adjusted.
func (n *Normalizer) Validate(mix models.PassengerMix) error {
	return mix.Validate()
}

// Extract reads travellers from free text. With no traveller mentioned it
// assumes one adult. Minors without any adult, senior or student fail with
// a PassengerMixError.
func (n *Normalizer) Extract(text string) (Extraction, error) {
	p := parseText(text)

	ex := Extraction{
		Sources: map[string]models.FieldSource{
			models.FieldAdults:        models.SourceDefaulted,
			models.FieldSeniors:       models.SourceDefaulted,
			models.FieldStudents:      models.SourceDefaulted,
			models.FieldChildrenAges:  models.SourceDefaulted,
			models.FieldInfantsOnSeat: models.SourceDefaulted,
			models.FieldInfantsOnLap:  models.SourceDefaulted,
		},
	}
	mix := &ex.Mix
	stated := func(field string) { ex.Sources[field] = models.SourceStated }

	genericTotal, companions := 0, 0
	for _, g := range p.groups {
		switch g.cat {
		case adult:
			mix.Adults += g.count
			stated(models.FieldAdults)
		case senior:
			mix.Seniors += g.count
			stated(models.FieldSeniors)
		case student:
			mix.Students += g.count
			stated(models.FieldStudents)
		case generic:
			genericTotal += g.count
		case companion:
			companions += g.count
		default:
			n.addMinors(&ex, g)
		}
	}

	if genericTotal > 0 {
		if rest := genericTotal - mix.Total(); rest > 0 {
			mix.Adults += rest
			stated(models.FieldAdults)
		}
	}

	if mix.Supervisors() == 0 {
		switch {
		case companions > 0 && p.speaker:
			mix.Adults = companions + 1
			ex.Sources[models.FieldAdults] = models.SourceInferred
			ex.Adjustments = append(ex.Adjustments, fmt.Sprintf("counted you and %d companion(s) as %d adults", companions, mix.Adults))
		case companions > 0:
			mix.Adults = companions
			ex.Sources[models.FieldAdults] = models.SourceInferred
		case p.speaker:
			mix.Adults = 1
			ex.Sources[models.FieldAdults] = models.SourceInferred
			ex.Adjustments = append(ex.Adjustments, "counted you as 1 adult")
		case mix.Minors() == 0:
			mix.Adults = 1
		}
	}

	normalized, adjustments, err := n.Normalize(*mix)
	if err != nil {
		return Extraction{}, err
	}
	ex.Mix = normalized
	ex.Adjustments = append(ex.Adjustments, adjustments...)
	return ex, nil
}

func (n *Normalizer) addMinors(ex *Extraction, g group) {
	count := g.count
	if count < len(g.ages) {
		count = len(g.ages)
	}
	if count < 0 {
		count = 1
		ex.Adjustments = append(ex.Adjustments, "number of children not given, assumed 1")
	}

	for i := 0; i < count; i++ {
		if i >= len(g.ages) {
			if g.cat == infant {
				n.addInfant(ex, g.lap)
				continue
			}
			ex.Mix.ChildrenAges = append(ex.Mix.ChildrenAges, n.defaultChildAge)
			ex.Sources[models.FieldChildrenAges] = models.SourceStated
			ex.Adjustments = append(ex.Adjustments, fmt.Sprintf("child age not given, assumed %d", n.defaultChildAge))
			continue
		}

		months := g.ages[i]
		switch {
		case months < 12*models.MinChildAge:
			n.addInfant(ex, g.lap)
		case months <= 12*models.MaxChildAge+11:
			ex.Mix.ChildrenAges = append(ex.Mix.ChildrenAges, months/12)
			ex.Sources[models.FieldChildrenAges] = models.SourceStated
		default:
			ex.Mix.Adults++
			ex.Sources[models.FieldAdults] = models.SourceStated
			ex.Adjustments = append(ex.Adjustments, fmt.Sprintf("traveller aged %s counted as an adult", describeAge(months)))
		}
	}
}

func (n *Normalizer) addInfant(ex *Extraction, lap bool) {
	if lap {
		ex.Mix.InfantsOnLap++
		ex.Sources[models.FieldInfantsOnLap] = models.SourceStated
		return
	}
	ex.Mix.InfantsOnSeat++
	ex.Sources[models.FieldInfantsOnSeat] = models.SourceStated
}

// Normalize clamps a mix read from free text into the supported ranges and
// reports each change. It fails only when minors have no adult, senior or
// student to travel with.
func (n *Normalizer) Normalize(mix models.PassengerMix) (models.PassengerMix, []string, error) {
	var adjustments []string
	clamp := func(v *int, max int, what string) {
		if *v < 0 {
			*v = 0
		}
		if *v > max {
			adjustments = append(adjustments, fmt.Sprintf("%s reduced from %d to %d", what, *v, max))
			*v = max
		}
	}

	out := mix
	out.ChildrenAges = append([]int{}, mix.ChildrenAges...)

	clamp(&out.Adults, models.MaxPerAdultCategory, "adults")
	clamp(&out.Seniors, models.MaxPerAdultCategory, "seniors")
	clamp(&out.Students, models.MaxPerAdultCategory, "students")

	for i, age := range out.ChildrenAges {
		switch {
		case age < models.MinChildAge:
			out.ChildrenAges[i] = models.MinChildAge
			adjustments = append(adjustments, fmt.Sprintf("child age %d raised to %d", age, models.MinChildAge))
		case age > models.MaxChildAge:
			out.ChildrenAges[i] = models.MaxChildAge
			adjustments = append(adjustments, fmt.Sprintf("child age %d lowered to %d", age, models.MaxChildAge))
		}
	}
	if len(out.ChildrenAges) > models.MaxChildren {
		adjustments = append(adjustments, fmt.Sprintf("children reduced from %d to %d", len(out.ChildrenAges), models.MaxChildren))
		out.ChildrenAges = out.ChildrenAges[:models.MaxChildren]
	}

	if out.Supervisors() == 0 && out.Minors() > 0 {
		return models.PassengerMix{}, nil, &models.PassengerMixError{Reason: "children and infants must travel with at least one adult, senior or student"}
	}

	if extra := out.InfantsOnLap - out.Supervisors(); extra > 0 {
		out.InfantsOnLap -= extra
		out.InfantsOnSeat += extra
		adjustments = append(adjustments, fmt.Sprintf("moved %d lap infant(s) to their own seat", extra))
	}
	clamp(&out.InfantsOnLap, models.MaxInfantsPerKind, "lap infants")
	clamp(&out.InfantsOnSeat, models.MaxInfantsPerKind, "infants on seat")

	if out.Supervisors() == 0 {
		out.Adults = 1
		adjustments = append(adjustments, "no travellers given, assumed 1 adult")
	}
	return out, adjustments, nil
}
