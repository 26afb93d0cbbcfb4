package hierarchy

import (
	"fmt"

	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
)

// Nationality identifies the belligerent or political entity fielding a unit.
type Nationality int

const (
	// NationalityUnspecified represents an invalid nationality value.
	NationalityUnspecified Nationality = iota
	NationalityGermany
	NationalityItaly
	NationalityRomania
	NationalityHungary
	NationalityBulgaria
	NationalityFinland
	NationalitySlovakia
	NationalityCroatia
	NationalityVichyFrance
	NationalityJapan
	NationalitySovietUnion
	NationalityUnitedKingdom
	NationalityUnitedStates
	NationalityFrance
	NationalityFreeFrance
	NationalityPoland
	NationalityNorway
	NationalityNetherlands
	NationalityBelgium
	NationalityGreece
	NationalityYugoslavia
	NationalityPartisans
	NationalityNeutral

	nationalityEnd
)

// ErrInvalidNationality indicates a nationality outside the enumeration.
var ErrInvalidNationality = apperrors.New(apperrors.CodeNationalityInvalid, "nationality is not recognised")

var nationalityLabels = map[Nationality]string{
	NationalityGermany:       "GERMANY",
	NationalityItaly:         "ITALY",
	NationalityRomania:       "ROMANIA",
	NationalityHungary:       "HUNGARY",
	NationalityBulgaria:      "BULGARIA",
	NationalityFinland:       "FINLAND",
	NationalitySlovakia:      "SLOVAKIA",
	NationalityCroatia:       "CROATIA",
	NationalityVichyFrance:   "VICHY_FRANCE",
	NationalityJapan:         "JAPAN",
	NationalitySovietUnion:   "SOVIET_UNION",
	NationalityUnitedKingdom: "UNITED_KINGDOM",
	NationalityUnitedStates:  "UNITED_STATES",
	NationalityFrance:        "FRANCE",
	NationalityFreeFrance:    "FREE_FRANCE",
	NationalityPoland:        "POLAND",
	NationalityNorway:        "NORWAY",
	NationalityNetherlands:   "NETHERLANDS",
	NationalityBelgium:       "BELGIUM",
	NationalityGreece:        "GREECE",
	NationalityYugoslavia:    "YUGOSLAVIA",
	NationalityPartisans:     "PARTISANS",
	NationalityNeutral:       "NEUTRAL",
}

var nationalitiesByLabel = invert(nationalityLabels)

// Valid reports whether n is a declared nationality.
func (n Nationality) Valid() bool {
	return n > NationalityUnspecified && n < nationalityEnd
}

// String returns the canonical label of n.
func (n Nationality) String() string {
	if label, ok := nationalityLabels[n]; ok {
		return label
	}
	return fmt.Sprintf("NATIONALITY(%d)", int(n))
}

// Nationalities returns every declared nationality in declaration order.
func Nationalities() []Nationality {
	out := make([]Nationality, 0, int(nationalityEnd)-1)
	for n := NationalityGermany; n < nationalityEnd; n++ {
		out = append(out, n)
	}
	return out
}

// NationalityFromLabel parses a nationality label.
func NationalityFromLabel(value string) (Nationality, error) {
	if n, ok := parseLabel(value, "NATIONALITY_", nationalitiesByLabel); ok {
		return n, nil
	}
	return NationalityUnspecified, apperrors.Detail(ErrInvalidNationality, map[string]string{"nationality": value})
}

func validateNationality(n Nationality) error {
	if n.Valid() {
		return nil
	}
	return apperrors.Detail(ErrInvalidNationality, map[string]string{"nationality": fmt.Sprint(int(n))})
}
