package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeClock_SetAndAdvance(t *testing.T) {
	t0 := time.Date(2024, 3, 25, 12, 0, 0, 0, time.UTC)
	c := NewFakeClock(t0)
	assert.Equal(t, t0, c.Now())

	got := c.Advance(4 * time.Second)
	assert.Equal(t, t0.Add(4*time.Second), got)
	assert.Equal(t, got, c.Now())

	c.Set(t0)
	assert.Equal(t, t0, c.Now())
}

func TestSystemClock_IsMonotonicEnough(t *testing.T) {
	var c Clock = SystemClock{}
	a := c.Now()
	b := c.Now()
	assert.False(t, b.Before(a))
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", in: `"5s"`, want: 5 * time.Second},
		{name: "minutes", in: `"10m"`, want: 10 * time.Minute},
		{name: "nanoseconds", in: `1000000000`, want: time.Second},
		{name: "bad string", in: `"soon"`, wantErr: true},
		{name: "bool", in: `true`, wantErr: true},
		{name: "broken json", in: `{`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}
