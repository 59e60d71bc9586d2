package provider

import (
	"strings"
	"unicode"
)

const (
	maxAlphanumericOriginator = 11
	maxNumericOriginator      = 15
)

// LocalToInternational turns a local number into an international one by
// replacing its trunk digit with prefix. Numbers starting with '+' are kept.
func LocalToInternational(number, prefix string) string {
	if number == "" || number[0] == '+' {
		return number
	}
	return prefix + number[1:]
}

// CleanOriginator keeps [A-Za-z0-9] only. Alphanumeric sender ids are
// truncated to 11 characters; numeric ones lose a leading "00" and are
// capped at 15 digits.
func CleanOriginator(originator string) string {
	var (
		b          strings.Builder
		hasLetters bool
	)

	for i := 0; i < len(originator); i++ {
		c := originator[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			hasLetters = true
			b.WriteByte(c)
		case c >= '0' && c <= '9':
			b.WriteByte(c)
		}
	}

	cleaned := b.String()

	if hasLetters {
		if len(cleaned) > maxAlphanumericOriginator {
			cleaned = cleaned[:maxAlphanumericOriginator]
		}
		return cleaned
	}

	if strings.HasPrefix(cleaned, "00") {
		cleaned = cleaned[2:]
		if len(cleaned) > maxNumericOriginator {
			cleaned = cleaned[:maxNumericOriginator]
		}
	}

	return cleaned
}

// ContainsUnicode reports whether body has any non-ASCII character.
func ContainsUnicode(body string) bool {
	for _, r := range body {
		if r > unicode.MaxASCII {
			return true
		}
	}
	return false
}
