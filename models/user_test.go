package models

import "testing"

func TestValidUsername(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{"plain", "newuser", true},
		{"dotted", "first.last", true},
		{"cyrillic", "повар", true},
		{"with symbols", "user@host+x-1_", true},
		{"empty", "", false},
		{"spaces", "   ", false},
		{"punctuation", "!!!invalid###", false},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidUsername(tt.value); got != tt.want {
				t.Fatalf("ValidUsername(%q) = %t, want %t", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidSlug(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{"plain", "breakfast", true},
		{"dashed", "low-carb_2", true},
		{"empty", "", false},
		{"cyrillic", "завтрак", false},
		{"spaces", "two words", false},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidSlug(tt.value); got != tt.want {
				t.Fatalf("ValidSlug(%q) = %t, want %t", tt.value, got, tt.want)
			}
		})
	}
}
