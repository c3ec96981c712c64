// Package e2e provides end-to-end tests over the HTTP API with a generated
// reunification corpus and evidence fixtures.
package e2e

import (
	"fmt"

	"github.com/RameshMYatnalli/new-claimsat/internal/geo"
	"github.com/RameshMYatnalli/new-claimsat/internal/models"
)

// Family is one missing-person report and the survivor registration that
// should be matched to it.
type Family struct {
	Missing  models.MissingPersonInput
	Survivor models.SurvivorInput
	// Variant describes how the survivor's registration differs from the report.
	Variant string
}

// Corpus holds the families registered by the E2E tests.
type Corpus struct {
	DisasterID string
	Families   []Family
}

var (
	firstNames = []string{
		"Ramesh", "Priya", "Arjun", "Kavitha", "Suresh", "Meena", "Vikram", "Anjali",
		"Karthik", "Divya", "Ganesh", "Lakshmi", "Manoj", "Revathi", "Naveen", "Sangeetha",
		"Prakash", "Nandini", "Harish", "Deepa",
	}
	lastNames = []string{
		"Kumar", "Sharma", "Iyer", "Reddy", "Pillai", "Nair", "Menon", "Rao",
		"Subramanian", "Krishnan", "Venkatesh", "Natarajan", "Balan", "Gopal", "Chandran", "Mohan",
		"Raghavan", "Srinivasan", "Ananth", "Varma",
	}
	outfits = []string{
		"blue shirt", "red saree", "green kurta", "yellow dress", "white dhoti",
		"orange top", "black jacket", "purple salwar", "grey t-shirt", "pink blouse",
	}
)

// BuildCorpus returns n families (at most len(firstNames)) in disasterID. Ages
// are spread four years apart and each family gets a distinct name and outfit,
// so the expected survivor is unambiguous.
func BuildCorpus(disasterID string, n int) *Corpus {
	if n > len(firstNames) {
		n = len(firstNames)
	}
	c := &Corpus{DisasterID: disasterID}
	for i := 0; i < n; i++ {
		first, last := firstNames[i], lastNames[i]
		gender := models.GenderMale
		if i%2 == 1 {
			gender = models.GenderFemale
		}
		age := 6 + 4*i
		desc := fmt.Sprintf("%s build, wearing %s", []string{"slim", "medium", "heavy"}[i%3], outfits[i%len(outfits)])
		seen := geo.Point{Lat: 13.0 + 0.005*float64(i), Lng: 80.2 + 0.005*float64(i)}
		found := geo.Point{Lat: seen.Lat + 0.01, Lng: seen.Lng - 0.01}

		f := Family{
			Missing: models.MissingPersonInput{
				DisasterID:          disasterID,
				Name:                first + " " + last,
				Age:                 intPtr(age),
				Gender:              gender,
				PhysicalDescription: desc,
				LastSeenLocation:    fmt.Sprintf("Ward %d, Chennai", i+1),
				LastSeenDate:        "2024-11-16T08:00:00",
				LastSeenCoordinates: &seen,
				ReportedBy:          "Relative of " + first,
				ReporterContact:     fmt.Sprintf("+91-90000%05d", i),
			},
			Survivor: models.SurvivorInput{
				DisasterID:          disasterID,
				Age:                 intPtr(age + 1),
				Gender:              gender,
				PhysicalDescription: desc,
				CurrentLocation:     fmt.Sprintf("Relief camp %d", i+1),
				CurrentCoordinates:  &found,
				RegisteredBy:        "Camp desk",
			},
		}
		switch i % 3 {
		case 0:
			f.Survivor.Name = first + " " + last
			f.Variant = "exact name"
		case 1:
			f.Survivor.Name = first
			f.Variant = "first name only"
		default:
			f.Survivor.Name = first + " " + typo(last)
			f.Variant = "misspelled surname"
		}
		c.Families = append(c.Families, f)
	}
	return c
}

// typo swaps the second and third letters of s.
func typo(s string) string {
	r := []rune(s)
	if len(r) < 3 {
		return s
	}
	r[1], r[2] = r[2], r[1]
	return string(r)
}

func intPtr(v int) *int { return &v }
