package hierarchy

import (
	"fmt"

	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
)

// UnitType classifies a unit. The declaration order is the unit type rank
// used by the canonical order: ground combat, ground support, air, naval,
// then transport.
type UnitType int

const (
	// UnitTypeUnspecified represents an invalid unit type value.
	UnitTypeUnspecified UnitType = iota
	UnitTypeInfantry
	UnitTypeTank
	UnitTypeRecon
	UnitTypeAntiTank
	UnitTypeArtillery
	UnitTypeAntiAircraft
	UnitTypeStructure
	UnitTypeFighter
	UnitTypeTacticalBomber
	UnitTypeStrategicBomber
	UnitTypeSubmarine
	UnitTypeDestroyer
	UnitTypeCapitalShip
	UnitTypeCarrier
	UnitTypeLandTransport
	UnitTypeAirTransport
	UnitTypeSeaTransport
	UnitTypeTrain
	UnitTypeArmoredTrain
	UnitTypeRiverBoat

	unitTypeEnd
)

// Branch groups unit types by service branch.
type Branch int

const (
	BranchUnspecified Branch = iota
	BranchGroundCombat
	BranchGroundSupport
	BranchAir
	BranchNaval
	BranchTransport
)

// ErrInvalidUnitType indicates a unit type outside the enumeration.
var ErrInvalidUnitType = apperrors.New(apperrors.CodeUnitTypeInvalid, "unit type is not recognised")

var unitTypeLabels = map[UnitType]string{
	UnitTypeInfantry:        "INFANTRY",
	UnitTypeTank:            "TANK",
	UnitTypeRecon:           "RECON",
	UnitTypeAntiTank:        "ANTI_TANK",
	UnitTypeArtillery:       "ARTILLERY",
	UnitTypeAntiAircraft:    "ANTI_AIRCRAFT",
	UnitTypeStructure:       "STRUCTURE",
	UnitTypeFighter:         "FIGHTER",
	UnitTypeTacticalBomber:  "TACTICAL_BOMBER",
	UnitTypeStrategicBomber: "STRATEGIC_BOMBER",
	UnitTypeSubmarine:       "SUBMARINE",
	UnitTypeDestroyer:       "DESTROYER",
	UnitTypeCapitalShip:     "CAPITAL_SHIP",
	UnitTypeCarrier:         "CARRIER",
	UnitTypeLandTransport:   "LAND_TRANSPORT",
	UnitTypeAirTransport:    "AIR_TRANSPORT",
	UnitTypeSeaTransport:    "SEA_TRANSPORT",
	UnitTypeTrain:           "TRAIN",
	UnitTypeArmoredTrain:    "ARMORED_TRAIN",
	UnitTypeRiverBoat:       "RIVER_BOAT",
}

var unitTypesByLabel = invert(unitTypeLabels)

// Valid reports whether t is a declared unit type.
func (t UnitType) Valid() bool {
	return t > UnitTypeUnspecified && t < unitTypeEnd
}

// Rank returns the position of t in the declared order.
func (t UnitType) Rank() int {
	return int(t)
}

// String returns the canonical label of t.
func (t UnitType) String() string {
	if label, ok := unitTypeLabels[t]; ok {
		return label
	}
	return fmt.Sprintf("UNIT_TYPE(%d)", int(t))
}

// Branch returns the service branch t belongs to.
func (t UnitType) Branch() Branch {
	switch {
	case t >= UnitTypeInfantry && t <= UnitTypeAntiTank:
		return BranchGroundCombat
	case t >= UnitTypeArtillery && t <= UnitTypeStructure:
		return BranchGroundSupport
	case t >= UnitTypeFighter && t <= UnitTypeStrategicBomber:
		return BranchAir
	case t >= UnitTypeSubmarine && t <= UnitTypeCarrier:
		return BranchNaval
	case t >= UnitTypeLandTransport && t <= UnitTypeRiverBoat:
		return BranchTransport
	default:
		return BranchUnspecified
	}
}

// UnitTypes returns every declared unit type in rank order.
func UnitTypes() []UnitType {
	out := make([]UnitType, 0, int(unitTypeEnd)-1)
	for t := UnitTypeInfantry; t < unitTypeEnd; t++ {
		out = append(out, t)
	}
	return out
}

// UnitTypeFromLabel parses a unit type label.
func UnitTypeFromLabel(value string) (UnitType, error) {
	if t, ok := parseLabel(value, "UNIT_TYPE_", unitTypesByLabel); ok {
		return t, nil
	}
	return UnitTypeUnspecified, apperrors.Detail(ErrInvalidUnitType, map[string]string{"unit_type": value})
}

func validateUnitType(t UnitType) error {
	if t.Valid() {
		return nil
	}
	return apperrors.Detail(ErrInvalidUnitType, map[string]string{"unit_type": fmt.Sprint(int(t))})
}
