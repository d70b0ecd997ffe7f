package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("Str0ng!Pass1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.True(t, CheckPasswordHash("Str0ng!Pass1", hash))
	assert.False(t, CheckPasswordHash("Str0ng!Pass2", hash))
	assert.False(t, CheckPasswordHash("", hash))
}

func TestHashPassword_DefaultCost(t *testing.T) {
	// A zero work factor falls back to the bcrypt default rather than
	// producing a trivially cheap hash.
	hash, err := HashPassword("Str0ng!Pass1", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		wantValid  bool
		wantPhrase string
	}{
		{
			name:      "strong password accepted",
			password:  "Str0ng!Pass",
			wantValid: true,
		},
		{
			name:       "too short",
			password:   "S0r!t",
			wantValid:  false,
			wantPhrase: "at least 8",
		},
		{
			name:       "too long",
			password:   "Aa1!" + strings.Repeat("x", 128),
			wantValid:  false,
			wantPhrase: "at most 128",
		},
		{
			// Six characters, ten bytes; the minimum counts characters.
			name:       "multibyte too short despite byte count",
			password:   "Ж1ж!Жж",
			wantValid:  false,
			wantPhrase: "at least 8",
		},
		{
			// 128 characters, 192 bytes; the maximum counts characters.
			name:      "multibyte at maximum length accepted",
			password:  strings.Repeat("Жж1!", 32),
			wantValid: true,
		},
		{
			name:       "missing uppercase",
			password:   "str0ng!pass",
			wantValid:  false,
			wantPhrase: "uppercase",
		},
		{
			name:       "missing lowercase",
			password:   "STR0NG!PASS",
			wantValid:  false,
			wantPhrase: "lowercase",
		},
		{
			name:       "missing digit",
			password:   "Strong!Pass",
			wantValid:  false,
			wantPhrase: "digit",
		},
		{
			name:       "missing symbol",
			password:   "Str0ngPassw",
			wantValid:  false,
			wantPhrase: "symbol",
		},
		{
			name:       "common password",
			password:   "Password123",
			wantValid:  false,
			wantPhrase: "too common",
		},
		{
			name:       "repeated characters",
			password:   "Str0ng!aaa",
			wantValid:  false,
			wantPhrase: "repeat",
		},
		{
			name:       "sequential digits",
			password:   "Str0ng!x123",
			wantValid:  false,
			wantPhrase: "sequential",
		},
		{
			name:       "sequential letters",
			password:   "Str0ng!abc",
			wantValid:  false,
			wantPhrase: "sequential",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := ValidatePassword(tt.password)
			if tt.wantValid {
				assert.Empty(t, violations)
				return
			}
			require.NotEmpty(t, violations)
			assert.True(t, containsPhrase(violations, tt.wantPhrase),
				"violations %v should mention %q", violations, tt.wantPhrase)
		})
	}
}

func TestValidatePassword_ReportsAllViolations(t *testing.T) {
	// "password" violates length is fine (8 chars) but misses three classes
	// and sits on the common list; every rule must be reported together.
	violations := ValidatePassword("password")

	assert.True(t, containsPhrase(violations, "too common"))
	assert.True(t, containsPhrase(violations, "uppercase"))
	assert.True(t, containsPhrase(violations, "digit"))
	assert.True(t, containsPhrase(violations, "symbol"))
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		wantLevel string
	}{
		{"empty", "", "very_weak"},
		{"common", "password", "very_weak"},
		{"short single class", "abcdefgh", "very_weak"},
		{"two classes", "adgjRUXB", "weak"},
		{"long four classes", "Correct!Horse7Battery", "strong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, level := PasswordStrength(tt.password)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

func TestPasswordStrength_Monotonic(t *testing.T) {
	weakScore, _ := PasswordStrength("abcdefgh")
	strongScore, _ := PasswordStrength("Correct!Horse7Battery")
	assert.Greater(t, strongScore, weakScore)
}

func containsPhrase(violations []string, phrase string) bool {
	for _, v := range violations {
		if strings.Contains(v, phrase) {
			return true
		}
	}
	return false
}
