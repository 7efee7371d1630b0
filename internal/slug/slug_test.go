package slug

import "testing"

func TestDerive(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// Basic normalization
		{"lowercase", "REMOTE", "remote"},
		{"spaces to dashes", "fast growing", "fast-growing"},
		{"underscores to dashes", "fast_growing", "fast-growing"},
		{"already normalized", "fast-growing", "fast-growing"},

		// Whitespace handling
		{"trim whitespace", "  urgent  ", "urgent"},
		{"multiple spaces", "dream   company", "dream-company"},
		{"tabs and spaces", "dream\t company", "dream-company"},

		// Special characters
		{"punctuation removal", "urgent!", "urgent"},
		{"slash replacement", "on-site/nyc", "on-site-nyc"},
		{"apostrophe removal", "don't", "dont"},

		// Dash handling
		{"multiple dashes", "fast--growing", "fast-growing"},
		{"leading dashes", "--remote", "remote"},
		{"trailing dashes", "remote--", "remote"},

		// Edge cases
		{"empty string", "", ""},
		{"only spaces", "   ", ""},
		{"only special chars", "!@#$%", ""},
		{"numbers allowed", "top10", "top10"},
		{"mixed case with numbers", "Top 10 Picks", "top-10-picks"},

		// Case-insensitive identity: the reason duplicate names collide
		{"case collision upper", "Remote", "remote"},
		{"case collision lower", "remote", "remote"},
		{"referral bonus", "Referral Bonus", "referral-bonus"},
		{"needs visa", "Needs_Visa", "needs-visa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Derive(tt.input)
			if result != tt.expected {
				t.Errorf("Derive(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
