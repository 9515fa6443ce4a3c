package usecase

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const minNameTokenLength = 2

// checkNewPassword applies the registration password rules and returns the
// first rule broken, or nil.
func checkNewPassword(password, confirm, email, fullName string) *AppError {
	if password != confirm {
		return BadRequest(msgPasswordsDoNotMatch)
	}

	lowered := strings.ToLower(password)
	if lowered == strings.ToLower(strings.TrimSpace(email)) {
		return BadRequest("password cannot be the same as your email")
	}

	name := strings.ToLower(strings.Join(strings.Fields(fullName), " "))
	if lowered == name {
		return BadRequest("password cannot be the same as your full name")
	}

	for _, token := range strings.Fields(name) {
		if len([]rune(token)) >= minNameTokenLength && strings.Contains(lowered, token) {
			return BadRequest("password cannot contain your name")
		}
	}
	return nil
}

// capitalizeWords upper-cases the first letter of each word, lower-cases the
// rest and collapses runs of whitespace.
func capitalizeWords(s string) string {
	return cases.Title(language.Und).String(strings.Join(strings.Fields(s), " "))
}
