package lexicon

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Sentinel errors for client-side validation.
var (
	// ErrRootLength indicates a root that is not exactly three letters long.
	ErrRootLength = errors.New("root must be exactly 3 letters")
	// ErrRootScript indicates a root containing a non-Arabic character.
	ErrRootScript = errors.New("root must contain only Arabic letters")
	// ErrSchemeEmpty indicates a blank scheme name.
	ErrSchemeEmpty = errors.New("scheme name is required")
	// ErrSchemeRadicals indicates a scheme name missing one of ف ع ل.
	ErrSchemeRadicals = errors.New("scheme must contain the radicals ف, ع and ل")
)

// RootLength is the number of letters in a root.
const RootLength = 3

// Radicals are the placeholder letters a scheme substitutes with a root's
// consonants, in order.
const Radicals = "فعل"

// ValidationError records a value rejected before any network call.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

// Error returns the field, the offending value and the reason.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying sentinel for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Clean trims surrounding whitespace and applies Unicode NFC so that the
// same word typed with differently ordered diacritics compares equal.
func Clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// IsArabic reports whether r lies in the Arabic block U+0600–U+06FF.
func IsArabic(r rune) bool {
	return r >= 0x0600 && r <= 0x06FF
}

// ValidateRoot cleans text and checks that it is exactly three Arabic
// letters. It returns the cleaned text.
func ValidateRoot(text string) (string, error) {
	cleaned := Clean(text)
	if utf8.RuneCountInString(cleaned) != RootLength {
		return cleaned, &ValidationError{Field: "root", Value: cleaned, Err: ErrRootLength}
	}
	for _, r := range cleaned {
		if !IsArabic(r) {
			return cleaned, &ValidationError{Field: "root", Value: cleaned, Err: ErrRootScript}
		}
	}
	return cleaned, nil
}

// ValidateScheme cleans name and checks that it is non-empty and mentions
// all three radicals. It returns the cleaned name.
func ValidateScheme(name string) (string, error) {
	cleaned := Clean(name)
	if cleaned == "" {
		return cleaned, &ValidationError{Field: "scheme", Value: cleaned, Err: ErrSchemeEmpty}
	}
	for _, r := range Radicals {
		if !strings.ContainsRune(cleaned, r) {
			return cleaned, &ValidationError{Field: "scheme", Value: cleaned, Err: ErrSchemeRadicals}
		}
	}
	return cleaned, nil
}
