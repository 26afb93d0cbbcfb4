// Package errors provides structured, coded errors for the dossier domain.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Naming and enumeration errors
	CodeNameInvalid          Code = "NAME_INVALID"
	CodeUnitTypeInvalid      Code = "UNIT_TYPE_INVALID"
	CodeNationalityInvalid   Code = "NATIONALITY_INVALID"
	CodeOutcomeInvalid       Code = "OUTCOME_INVALID"
	CodeStatKindInvalid      Code = "STAT_KIND_INVALID"
	CodeStatValueNegative    Code = "STAT_VALUE_NEGATIVE"
	CodeStatValueOutOfRange  Code = "STAT_VALUE_OUT_OF_RANGE"
	CodeScenarioIndexInvalid Code = "SCENARIO_INDEX_INVALID"
	CodeNodeNameAmbiguous    Code = "NODE_NAME_AMBIGUOUS"

	// Hierarchy errors
	CodeHierarchyCycle         Code = "HIERARCHY_CYCLE"
	CodeHierarchyNotFormation  Code = "HIERARCHY_NOT_FORMATION"
	CodeHierarchyRootImmutable Code = "HIERARCHY_ROOT_IMMUTABLE"
	CodeHierarchyDuplicateID   Code = "HIERARCHY_DUPLICATE_ID"
	CodeHierarchyInvariant     Code = "HIERARCHY_INVARIANT_BROKEN"
	CodeHierarchyNotUnit       Code = "HIERARCHY_NOT_UNIT"

	// Lookup errors
	CodeNodeNotFound        Code = "NODE_NOT_FOUND"
	CodeNotSubordinate      Code = "NOT_SUBORDINATE"
	CodeScenarioNotFound    Code = "SCENARIO_NOT_FOUND"
	CodeDecoratorStale      Code = "DECORATOR_STALE"
	CodeArchiveDossierUnset Code = "ARCHIVE_DOSSIER_NOT_FOUND"

	// Persistence errors
	CodeDecodeMalformed   Code = "DECODE_MALFORMED"
	CodeDecodeUnsupported Code = "DECODE_UNSUPPORTED_VERSION"
	CodeDecodeInvalid     Code = "DECODE_INVALID_CONTENT"
	CodeFormatUnknown     Code = "FORMAT_UNKNOWN"
	CodeWriteFailed       Code = "WRITE_FAILED"
	CodeReadFailed        Code = "READ_FAILED"
)

// Category groups codes into the taxonomy callers branch on.
type Category int

const (
	// CategoryUnknown is used for codes outside the taxonomy.
	CategoryUnknown Category = iota
	// CategoryValidation rejects input before any mutation.
	CategoryValidation
	// CategoryStructural rejects mutations that would break the tree shape.
	CategoryStructural
	// CategoryNotFound rejects references to nodes or records not where claimed.
	CategoryNotFound
	// CategoryDeserialization reports malformed persisted input.
	CategoryDeserialization
	// CategoryIO reports read or write failures.
	CategoryIO
)

// String returns the taxonomy name of the category.
func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryStructural:
		return "structural"
	case CategoryNotFound:
		return "not_found"
	case CategoryDeserialization:
		return "deserialization"
	case CategoryIO:
		return "io"
	default:
		return "unknown"
	}
}

// Category maps a code onto its taxonomy category.
func (c Code) Category() Category {
	switch c {
	// Validation - rejected before mutation, state unchanged
	case CodeNameInvalid,
		CodeUnitTypeInvalid,
		CodeNationalityInvalid,
		CodeOutcomeInvalid,
		CodeStatKindInvalid,
		CodeStatValueNegative,
		CodeStatValueOutOfRange,
		CodeScenarioIndexInvalid,
		CodeNodeNameAmbiguous:
		return CategoryValidation

	// Structural - the tree would stop being a tree
	case CodeHierarchyCycle,
		CodeHierarchyNotFormation,
		CodeHierarchyRootImmutable,
		CodeHierarchyDuplicateID,
		CodeHierarchyInvariant,
		CodeHierarchyNotUnit:
		return CategoryStructural

	// NotFound - reference not in its claimed position
	case CodeNodeNotFound,
		CodeNotSubordinate,
		CodeScenarioNotFound,
		CodeDecoratorStale,
		CodeArchiveDossierUnset:
		return CategoryNotFound

	case CodeDecodeMalformed,
		CodeDecodeUnsupported,
		CodeDecodeInvalid,
		CodeFormatUnknown:
		return CategoryDeserialization

	case CodeWriteFailed,
		CodeReadFailed:
		return CategoryIO

	default:
		return CategoryUnknown
	}
}
