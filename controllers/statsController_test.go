package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTodayRangeIsUTCWholeDay(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)

	// 01:15 IST on March 2 is still March 1 in UTC; the stats day must agree
	// with the list filter's UTC day boundaries.
	start, end := todayRange(time.Date(2025, 3, 2, 1, 15, 0, 0, ist))

	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 1, 23, 59, 59, 999000000, time.UTC), end)
}

func TestTodayRangeAtUTCMidnight(t *testing.T) {
	start, end := todayRange(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 2, 23, 59, 59, 999000000, time.UTC), end)
}
