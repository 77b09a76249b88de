package domain

import (
	"testing"
	"time"
)

func TestTokenPackage_AvailableAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	before := now.Add(-24 * time.Hour)
	after := now.Add(24 * time.Hour)

	cases := []struct {
		name string
		pkg  TokenPackage
		want bool
	}{
		{"inactive", TokenPackage{Active: false}, false},
		{"active no window", TokenPackage{Active: true}, true},
		{"before window", TokenPackage{Active: true, ValidFrom: &after}, false},
		{"after window", TokenPackage{Active: true, ValidUntil: &before}, false},
		{"inside window", TokenPackage{Active: true, ValidFrom: &before, ValidUntil: &after}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.pkg.AvailableAt(now); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}
