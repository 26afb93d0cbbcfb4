// Package naming validates the names given to formations, units, and
// scenarios. The same rule applies everywhere a name is stored so a name that
// survives a rename also survives a save.
package naming

import (
	"unicode"
	"unicode/utf8"

	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
)

// ErrInvalidName indicates a name that breaks the naming rule.
var ErrInvalidName = apperrors.New(apperrors.CodeNameInvalid, "name must be non-empty printable text without surrounding or repeated spaces")

// IsValidName reports whether name is non-empty, has no leading or trailing
// whitespace, and consists only of letters, digits, punctuation, symbols, and
// single interior spaces.
func IsValidName(name string) bool {
	if name == "" || !utf8.ValidString(name) {
		return false
	}
	prevSpace := true
	for _, r := range name {
		if r == ' ' {
			if prevSpace {
				return false
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		if r == utf8.RuneError {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return !prevSpace
}

// Validate returns ErrInvalidName carrying the rejected value when name is not
// valid.
func Validate(name string) error {
	if IsValidName(name) {
		return nil
	}
	return apperrors.Detail(ErrInvalidName, map[string]string{"name": name})
}
