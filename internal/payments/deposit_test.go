package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettleDeposit(t *testing.T) {
	cases := []struct {
		name         string
		holdCents    int64
		captureCents int64
		wantRelease  bool
		wantReleased int64
	}{
		{"full capture keeps everything", 10000, 10000, false, 0},
		{"partial capture releases remainder", 10000, 2000, true, 8000},
		{"zero capture releases all", 10000, 0, true, 10000},
		{"zero hold nothing to release", 0, 0, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := SettleDeposit(tc.holdCents, tc.captureCents)
			assert.Equal(t, tc.wantRelease, outcome.Release)
			assert.Equal(t, tc.wantReleased, outcome.ReleaseCents)
			assert.Equal(t, tc.captureCents, outcome.CaptureCents)
		})
	}
}
