package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLowStock(t *testing.T) {
	cases := []struct {
		name         string
		quantity     int
		minThreshold int
		want         bool
	}{
		{"well above threshold", 50, 10, false},
		{"one above threshold", 11, 10, false},
		{"exactly at threshold", 10, 10, true},
		{"one below threshold", 9, 10, true},
		{"zero stock", 0, 10, true},
		{"zero threshold with stock", 5, 0, false},
		{"zero threshold exhausted", 0, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isLowStock(tc.quantity, tc.minThreshold))
		})
	}
}
