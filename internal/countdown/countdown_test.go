package countdown

import (
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCalculateExample(t *testing.T) {
	target := time.Date(2024, 1, 3, 1, 2, 3, 0, time.UTC)
	assert.Equal(t, TimeLeft{Days: 2, Hours: 1, Minutes: 2, Seconds: 3}, Calculate(target, epoch))
}

func TestCalculatePast(t *testing.T) {
	target := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, TimeLeft{IsPast: true}, Calculate(target, epoch))
	assert.Equal(t, TimeLeft{IsPast: true}, Calculate(epoch, epoch), "target == now is past")
}

func TestCalculateSubMillisecondIsPast(t *testing.T) {
	assert.True(t, Calculate(epoch.Add(500*time.Microsecond), epoch).IsPast)
}

func TestCalculateProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		delta := time.Duration(rng.Int63n(int64(400*24*time.Hour))) + time.Millisecond
		left := Calculate(epoch.Add(delta), epoch)

		require.False(t, left.IsPast)
		assert.GreaterOrEqual(t, left.Hours, int64(0))
		assert.Less(t, left.Hours, int64(24))
		assert.GreaterOrEqual(t, left.Minutes, int64(0))
		assert.Less(t, left.Minutes, int64(60))
		assert.GreaterOrEqual(t, left.Seconds, int64(0))
		assert.Less(t, left.Seconds, int64(60))

		diff := delta - rebuild(left)
		assert.GreaterOrEqual(t, diff, time.Duration(0))
		assert.Less(t, diff, time.Second)
	}
}

// rebuild turns a remainder back into a duration truncated to seconds
func rebuild(t TimeLeft) time.Duration {
	return time.Duration(t.Days)*24*time.Hour +
		time.Duration(t.Hours)*time.Hour +
		time.Duration(t.Minutes)*time.Minute +
		time.Duration(t.Seconds)*time.Second
}

func TestCalculatePastProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		delta := time.Duration(rng.Int63n(int64(400 * 24 * time.Hour)))
		assert.Equal(t, TimeLeft{IsPast: true}, Calculate(epoch.Add(-delta), epoch))
	}
}

func TestHubRendersImmediatelyAndTicks(t *testing.T) {
	hub := NewHub(5 * time.Millisecond)
	hub.SetClock(func() time.Time { return epoch })

	var calls atomic.Int32
	var last atomic.Value
	sub := hub.Subscribe(epoch.Add(90*time.Second), func(tl TimeLeft) {
		calls.Add(1)
		last.Store(tl)
	})
	defer sub.Release()

	assert.Equal(t, int32(1), calls.Load(), "first render is synchronous")
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, TimeLeft{Minutes: 1, Seconds: 30}, last.Load().(TimeLeft))
}

func TestHubReleaseLeavesNoTimers(t *testing.T) {
	hub := NewHub(time.Millisecond)

	subs := make([]*Subscription, 0, 10)
	for i := 0; i < 10; i++ {
		subs = append(subs, hub.Subscribe(time.Now().Add(time.Hour), func(TimeLeft) {}))
	}
	require.Equal(t, 10, hub.Active())

	for _, s := range subs {
		s.Release()
		s.Release()
	}
	assert.Equal(t, 0, hub.Active())
}

func TestHubStopsCallingAfterRelease(t *testing.T) {
	hub := NewHub(time.Millisecond)

	var calls atomic.Int32
	sub := hub.Subscribe(time.Now().Add(time.Hour), func(TimeLeft) { calls.Add(1) })
	time.Sleep(10 * time.Millisecond)
	sub.Release()

	after := calls.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
}

func TestHubClose(t *testing.T) {
	hub := NewHub(time.Millisecond)
	for i := 0; i < 3; i++ {
		hub.Subscribe(time.Now().Add(time.Hour), func(TimeLeft) {})
	}
	hub.Close()
	assert.Equal(t, 0, hub.Active())
}
