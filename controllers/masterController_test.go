package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProductName(t *testing.T) {
	cases := []struct {
		name    string
		product string
		pack    string
		brand   string
		dosage  string
		form    string
	}{
		{"tablet with dosage", "CLOPILET 75mg TAB", "10'S", "CLOPILET", "75MG", "Tablet"},
		{"tablet without unit", "DOLO 650 TAB", "15'S", "DOLO 650", "", "Tablet"},
		{"capsule", "OMEPRAZOLE 20mg CAP", "10'S", "OMEPRAZOLE", "20MG", "Capsule"},
		{"syrup", "BENADRYL SYP", "100ML", "BENADRYL", "", "Syrup"},
		{"injection", "MONOCEF 1g INJ", "VIAL", "MONOCEF", "1G", "Injection"},
		{"no form marker", "VOLINI GEL", "30G TUBE", "VOLINI GEL", "", ""},
		{"spaced dosage", "AZITHRAL 500 mg TAB", "5'S", "AZITHRAL", "500MG", "Tablet"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseProductName(tc.product, tc.pack)
			assert.Equal(t, tc.brand, got.BrandName)
			assert.Equal(t, tc.dosage, got.Dosage)
			assert.Equal(t, tc.form, got.Form)
			assert.Equal(t, tc.pack, got.Packing)
		})
	}
}

func TestParseProductNameBlankInput(t *testing.T) {
	got := parseProductName("   ", "")
	assert.Equal(t, "", got.BrandName)
}
