package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1e-3, cfg.PositionEpsilon)
	assert.Equal(t, 55.0, cfg.SpeedWarn)
	assert.Equal(t, 83.0, cfg.SpeedError)
	assert.Equal(t, 9.8, cfg.AccelWarn)
	assert.Equal(t, 19.6, cfg.AccelError)
	assert.Equal(t, 0.1, cfg.SwimAngleWarn)
	assert.Equal(t, 0.2, cfg.SwimAngleError)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		value    float64
		sev      Severity
		breached bool
	}{
		{"below warn", 9.999, SeverityInfo, false},
		{"at warn", 10, SeverityWarning, true},
		{"between", 12, SeverityWarning, true},
		{"at error", 15, SeverityError, true},
		{"above error", 100, SeverityError, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sev, breached := classify(tc.value, 10, 15)
			assert.Equal(t, tc.breached, breached)
			if breached {
				assert.Equal(t, tc.sev, sev)
			}
		})
	}
}

func TestLocatorString(t *testing.T) {
	assert.Equal(t, "", Locator{}.String())
	assert.Equal(t, "t=2.5", AtTime(2.5).String())
	assert.Equal(t, "t=1..3", AtTimeRange(1, 3).String())
	assert.Equal(t, "t=4", AtTimeRange(4, 4).String())
	assert.Equal(t, "event[2] t=8", AtIndex(2, 8).String())
}
