package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	passwordMinLength = 8
	passwordMaxLength = 128
)

// commonPasswords are rejected outright regardless of character classes.
// Matching is case-insensitive.
var commonPasswords = []string{
	"password", "password1", "password123", "passw0rd", "12345678",
	"123456789", "1234567890", "qwerty123", "qwertyuiop", "iloveyou",
	"admin123", "welcome1", "welcome123", "letmein1", "sunshine",
	"princess", "football", "baseball", "monkey123", "dragon123",
	"master123", "abc12345", "trustno1", "superman", "michael1",
}

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword checks password against the acceptance policy and returns
// every violated rule, not just the first.
func ValidatePassword(password string) []string {
	var violations []string

	// Length bounds count characters, not bytes; a multibyte password must
	// not slip under the minimum or trip the maximum early.
	length := utf8.RuneCountInString(password)
	if length < passwordMinLength {
		violations = append(violations, "must be at least 8 characters long")
	}
	if length > passwordMaxLength {
		violations = append(violations, "must be at most 128 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	if !hasUpper {
		violations = append(violations, "must contain an uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "must contain a lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "must contain a digit")
	}
	if !hasSymbol {
		violations = append(violations, "must contain a symbol")
	}

	if isCommonPassword(password) {
		violations = append(violations, "is too common")
	}
	if hasRepeatedRun(password) {
		violations = append(violations, "must not repeat the same character 3 or more times in a row")
	}
	if hasSequentialRun(password) {
		violations = append(violations, "must not contain sequential characters like \"abc\" or \"123\"")
	}

	return violations
}

// PasswordStrength scores a password 0-100 for UI feedback. It is advisory
// only; ValidatePassword is the gate.
func PasswordStrength(password string) (int, string) {
	score := 0

	switch n := utf8.RuneCountInString(password); {
	case n >= 16:
		score += 40
	case n >= 12:
		score += 30
	case n >= 10:
		score += 20
	case n >= 8:
		score += 10
	}

	classes := 0
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	for _, present := range []bool{hasUpper, hasLower, hasDigit, hasSymbol} {
		if present {
			classes++
			score += 10
		}
	}
	if classes == 4 {
		score += 20
	} else if classes == 3 {
		score += 10
	}

	if isCommonPassword(password) {
		score -= 40
	}
	if hasRepeatedRun(password) {
		score -= 15
	}
	if hasSequentialRun(password) {
		score -= 15
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var level string
	switch {
	case score < 20:
		level = "very_weak"
	case score < 40:
		level = "weak"
	case score < 60:
		level = "fair"
	case score < 80:
		level = "good"
	default:
		level = "strong"
	}

	return score, level
}

func isCommonPassword(password string) bool {
	lowered := strings.ToLower(password)
	for _, common := range commonPasswords {
		if lowered == common {
			return true
		}
	}
	return false
}

func hasRepeatedRun(password string) bool {
	runes := []rune(password)
	for i := 2; i < len(runes); i++ {
		if runes[i] == runes[i-1] && runes[i] == runes[i-2] {
			return true
		}
	}
	return false
}

// hasSequentialRun detects 3-character ascending runs such as "abc" or
// "123", case-insensitively.
func hasSequentialRun(password string) bool {
	runes := []rune(strings.ToLower(password))
	for i := 2; i < len(runes); i++ {
		a, b, c := runes[i-2], runes[i-1], runes[i]
		if !isalnum(a) || !isalnum(b) || !isalnum(c) {
			continue
		}
		if b == a+1 && c == b+1 {
			return true
		}
	}
	return false
}

func isalnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
