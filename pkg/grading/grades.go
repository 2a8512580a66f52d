// Package grading maps numeric coin grades to display labels on the
// Sheldon 1-70 scale.
//
// The banding is a static lookup: a numeric grade falls into exactly one
// band and receives that band's prefix (MS/PF at the top, then AU, XF,
// VF, F, VG, G, and the discrete AG3/FR2/PO1 values). Grades outside all
// bands are never dropped; they get a designation-prefixed fallback
// label so every positive population count survives into the report.
package grading

import "fmt"

// Band boundaries on the 1-70 grading scale. Bands are inclusive of
// both ends and must not overlap.
const (
	mintStateFloor = 60 // MS/PF territory, prefixed with the designation
	aboutUncFloor  = 50 // AU
	extremelyFine  = 40 // XF
	veryFineFloor  = 20 // VF
	fineFloor      = 12 // F
	veryGoodFloor  = 8  // VG
	goodFloor      = 4  // G
)

// MapGrade returns the display label for a numeric grade.
//
// The designation ("PF" or "MS") prefixes grades of 60 and above, where
// the grading service reports proof and mint-state populations
// separately. It also seeds the fallback label for grades outside every
// band, so the function is total: every non-negative grade maps to
// exactly one label.
func MapGrade(designation string, grade int) string {
	switch {
	case grade >= mintStateFloor:
		return fmt.Sprintf("%s%d", designation, grade)
	case grade >= aboutUncFloor:
		return fmt.Sprintf("AU%d", grade)
	case grade >= extremelyFine:
		return fmt.Sprintf("XF%d", grade)
	case grade >= veryFineFloor:
		return fmt.Sprintf("VF%d", grade)
	case grade >= fineFloor:
		return fmt.Sprintf("F%d", grade)
	case grade >= veryGoodFloor:
		return fmt.Sprintf("VG%d", grade)
	case grade >= goodFloor:
		return fmt.Sprintf("G%d", grade)
	case grade == 3:
		return "AG3"
	case grade == 2:
		return "FR2"
	case grade == 1:
		return "PO1"
	default:
		return fmt.Sprintf("%s%d", designation, grade)
	}
}

// LabelValue extracts the numeric grade embedded in a display label by
// concatenating its digit characters ("MS65" -> 65, "PO1" -> 1).
// Labels without digits return 0.
func LabelValue(label string) int {
	value := 0
	for _, r := range label {
		if r >= '0' && r <= '9' {
			value = value*10 + int(r-'0')
		}
	}
	return value
}
