package validation

import (
	"testing"
)

func TestCheck(t *testing.T) {
	checker := NewEmailChecker("colorado.edu")

	tests := []struct {
		email string
		want  bool
	}{
		{"sam.pottinger@colorado.edu", true},
		{"mary-jane.o-brien@colorado.edu", true},
		{"group@colorado.edu", false},              // no first.last form
		{"sam.pottinger@gmail.com", false},         // wrong domain
		{"sam.pottinger@colorado.edu.evil", false}, // trailing garbage
		{"", false},
	}

	for _, tt := range tests {
		if got := checker.Check(tt.email); got != tt.want {
			t.Errorf("Check(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestFullName(t *testing.T) {
	checker := NewEmailChecker("colorado.edu")

	first, last := checker.FullName("sam.pottinger@colorado.edu")
	if first != "Sam" || last != "Pottinger" {
		t.Errorf("FullName = %q %q, want Sam Pottinger", first, last)
	}

	// Non-institutional addresses fall back to the raw string
	first, last = checker.FullName("admin@example.com")
	if first != "admin@example.com" || last != "" {
		t.Errorf("FullName fallback = %q %q", first, last)
	}
}

func TestSafeEmailRoundTrip(t *testing.T) {
	email := "sam.pottinger@colorado.edu"
	safe := SafeEmail(email)

	if safe != "sam.pottinger%40colorado.edu" {
		t.Errorf("SafeEmail = %q", safe)
	}
	if got := UnsafeEmail(safe); got != email {
		t.Errorf("UnsafeEmail(SafeEmail(x)) = %q, want %q", got, email)
	}

	// Already-raw input passes through
	if got := UnsafeEmail(email); got != email {
		t.Errorf("UnsafeEmail(%q) = %q", email, got)
	}
}
