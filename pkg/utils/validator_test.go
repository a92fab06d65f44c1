package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"ap-team@example.com",
		"finance.alerts+invoices@company.co.uk",
		"USER_99@sub.domain.org",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"not-an-email",
		"missing-domain@",
		"@missing-local.com",
		"no-tld@host",
		"spaces in@example.com",
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), email)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "shorter than limit", in: "invoice", max: 10, want: "invoice"},
		{name: "exactly at limit", in: "invoice", max: 7, want: "invoice"},
		{name: "cut at limit", in: "invoice", max: 3, want: "inv"},
		{name: "multi-byte runes kept whole", in: "Büro für Möbel", max: 4, want: "Büro"},
		{name: "non-positive limit is a no-op", in: "invoice", max: 0, want: "invoice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateRunes(tt.in, tt.max))
		})
	}
}
