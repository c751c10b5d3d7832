package throttle

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Unix(1_000, 0)

func newTestGuard() *Guard {
	return NewGuard(60*time.Second, []int{1, 2, 4, 24})
}

func TestGuard_RateLimitWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		elapsed     time.Duration
		allowed     bool
		wantSeconds int
	}{
		{"immediately after", 0, false, 60},
		{"ten seconds later", 10 * time.Second, false, 50},
		{"fractional elapsed rounds down", 10*time.Second + 500*time.Millisecond, false, 49},
		{"one second before window", 59 * time.Second, false, 1},
		{"exactly at window", 60 * time.Second, true, 0},
		{"after window", 90 * time.Second, true, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := newTestGuard()
			g.RecordSubmission(7, epoch)

			d := g.Check(7, epoch.Add(tt.elapsed))
			assert.Equal(t, tt.allowed, d.Allowed)
			if tt.allowed {
				assert.NoError(t, d.Err())
				return
			}

			var denial *Denial
			require.True(t, errors.As(d.Err(), &denial))
			assert.Equal(t, ReasonRateLimited, denial.Reason)
			assert.Equal(t, tt.wantSeconds, denial.Seconds())
			assert.Contains(t, denial.Message(), "segundos")
		})
	}
}

func TestGuard_UnknownUserAllowed(t *testing.T) {
	t.Parallel()
	g := newTestGuard()
	assert.True(t, g.Check(42, epoch).Allowed)
}

func TestGuard_BanExpiry(t *testing.T) {
	t.Parallel()
	g := newTestGuard()

	until, err := g.Ban(5, 2, epoch)
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(2*time.Hour), until)

	d := g.Check(5, until.Add(-time.Nanosecond))
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonBanned, d.Reason)

	d = g.Check(5, until)
	assert.True(t, d.Allowed)

	_, banned := g.BannedUntil(5, until)
	assert.False(t, banned)
	assert.Empty(t, g.Export().BannedUntil, "expired ban is evicted lazily")
}

func TestGuard_BanMessage(t *testing.T) {
	t.Parallel()
	g := newTestGuard()

	_, err := g.Ban(5, 2, epoch)
	require.NoError(t, err)

	d := g.Check(5, epoch.Add(3599*time.Second))
	var denial *Denial
	require.True(t, errors.As(d.Err(), &denial))
	assert.Equal(t, 3601, denial.Seconds())
	assert.Equal(t, "🚫 Estás baneado. Tiempo restante: 1h 0m", denial.Message())

	d = g.Check(5, epoch.Add(7201*time.Second))
	assert.True(t, d.Allowed)
}

func TestGuard_BanCheckedBeforeRateLimit(t *testing.T) {
	t.Parallel()
	g := newTestGuard()

	g.RecordSubmission(5, epoch)
	_, err := g.Ban(5, 1, epoch)
	require.NoError(t, err)

	assert.Equal(t, ReasonBanned, g.Check(5, epoch.Add(time.Second)).Reason)
}

func TestGuard_BanOverwritesInsteadOfStacking(t *testing.T) {
	t.Parallel()
	g := newTestGuard()

	_, err := g.Ban(5, 24, epoch)
	require.NoError(t, err)
	until, err := g.Ban(5, 1, epoch.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, epoch.Add(time.Minute+time.Hour), until)
	assert.True(t, g.Check(5, until).Allowed)
}

func TestGuard_BanRejectsUnknownDuration(t *testing.T) {
	t.Parallel()
	g := newTestGuard()

	_, err := g.Ban(5, 3, epoch)
	assert.ErrorIs(t, err, ErrInvalidDuration)
	assert.True(t, g.Check(5, epoch).Allowed)
}

func TestGuard_Sweep(t *testing.T) {
	t.Parallel()
	g := newTestGuard()

	g.RecordSubmission(1, epoch)
	g.RecordSubmission(2, epoch.Add(50*time.Second))
	_, err := g.Ban(3, 1, epoch)
	require.NoError(t, err)

	removed := g.Sweep(epoch.Add(time.Hour))
	assert.Equal(t, 3, removed)

	st := g.Export()
	assert.Empty(t, st.LastSubmission)
	assert.Empty(t, st.BannedUntil)
}

func TestGuard_ExportImport(t *testing.T) {
	t.Parallel()
	g := newTestGuard()
	g.RecordSubmission(1, epoch)
	_, err := g.Ban(2, 4, epoch)
	require.NoError(t, err)

	fresh := newTestGuard()
	fresh.Import(g.Export())

	assert.Equal(t, g.Export(), fresh.Export())
	assert.False(t, fresh.Check(2, epoch.Add(time.Hour)).Allowed)
}

func TestGuard_ReserveStampsAtomically(t *testing.T) {
	t.Parallel()
	g := newTestGuard()

	d, res := g.Reserve(3, epoch)
	require.True(t, d.Allowed)
	require.NotNil(t, res)

	d, res2 := g.Reserve(3, epoch.Add(time.Second))
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonRateLimited, d.Reason)
	assert.Nil(t, res2)
	res2.Cancel()
}

func TestGuard_ReserveCancelRestoresPreviousStamp(t *testing.T) {
	t.Parallel()
	g := newTestGuard()

	_, res := g.Reserve(3, epoch)
	res.Cancel()
	assert.True(t, g.Check(3, epoch).Allowed, "a cancelled first stamp leaves no record")

	g.RecordSubmission(4, epoch)
	_, res = g.Reserve(4, epoch.Add(2*time.Minute))
	res.Cancel()
	d := g.Check(4, epoch.Add(70*time.Second))
	assert.True(t, d.Allowed)
	assert.Equal(t, map[int64]time.Time{4: epoch}, g.Export().LastSubmission)
}

func TestGuard_ReserveCancelKeepsNewerStamp(t *testing.T) {
	t.Parallel()
	g := newTestGuard()

	_, res := g.Reserve(5, epoch)
	g.RecordSubmission(5, epoch.Add(90*time.Second))
	res.Cancel()

	assert.Equal(t, epoch.Add(90*time.Second), g.Export().LastSubmission[5])
}

func TestGuard_ReserveRefusesBannedUser(t *testing.T) {
	t.Parallel()
	g := newTestGuard()
	_, err := g.Ban(6, 1, epoch)
	require.NoError(t, err)

	d, res := g.Reserve(6, epoch.Add(time.Minute))
	assert.Equal(t, ReasonBanned, d.Reason)
	assert.Nil(t, res)
	assert.NotContains(t, g.Export().LastSubmission, int64(6))
}
