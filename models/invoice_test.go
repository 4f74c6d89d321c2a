package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPaymentMode(t *testing.T) {
	cases := []struct {
		mode string
		want bool
	}{
		{"Cash", true},
		{"Card", true},
		{"UPI", true},
		{"cash", false},
		{"upi", false},
		{"Cheque", false},
		{"", false},
		{" Cash", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, IsValidPaymentMode(tc.mode), "mode %q", tc.mode)
	}
}
