package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestNewTable(t *testing.T) {
	tb := NewTable(30 * time.Millisecond)
	require.NotNil(t, tb)
	assert.Equal(t, 30*time.Millisecond, tb.Window())
	assert.Equal(t, 0, tb.Len())

	_, ok := tb.EarliestWait(t0)
	assert.False(t, ok, "empty table has no earliest wait")
	assert.Empty(t, tb.Due(t0))
}

func TestUpsertInsert(t *testing.T) {
	tb := NewTable(ms(30))

	res := tb.Upsert("DP-1", "/a.png", t0)
	assert.Equal(t, Inserted, res)

	p, ok := tb.Get("DP-1")
	require.True(t, ok)
	assert.Equal(t, PendingUpdate{Output: "DP-1", Path: "/a.png", QueuedAt: t0}, p)
}

func TestUpsertDifferentValueResetsDeadline(t *testing.T) {
	tb := NewTable(ms(30))
	tb.Upsert("DP-1", "/a.png", t0)

	res := tb.Upsert("DP-1", "/b.png", t0.Add(ms(10)))
	assert.Equal(t, Replaced, res)

	p, _ := tb.Get("DP-1")
	assert.Equal(t, "/b.png", p.Path)
	assert.True(t, p.QueuedAt.Equal(t0.Add(ms(10))))
	assert.Equal(t, 1, tb.Len())
}

func TestUpsertSameValueKeepsDeadline(t *testing.T) {
	tb := NewTable(ms(30))
	tb.Upsert("DP-1", "/a.png", t0)

	for i := 1; i <= 5; i++ {
		res := tb.Upsert("DP-1", "/a.png", t0.Add(ms(5*i)))
		assert.Equal(t, Unchanged, res, "iteration %d", i)
	}

	p, _ := tb.Get("DP-1")
	assert.True(t, p.QueuedAt.Equal(t0), "identical observations must not extend the window")

	assert.Empty(t, tb.Due(t0.Add(ms(29))))
	due := tb.Due(t0.Add(ms(30)))
	require.Len(t, due, 1)
	assert.Equal(t, "/a.png", due[0].Path)
}

func TestDueBoundary(t *testing.T) {
	tb := NewTable(ms(30))
	tb.Upsert("DP-1", "/a.png", t0)

	assert.Empty(t, tb.Due(t0.Add(ms(29))))
	assert.Len(t, tb.Due(t0.Add(ms(30))), 1, "remaining wait of zero is due")
	assert.Len(t, tb.Due(t0.Add(ms(100))), 1)
}

func TestDueDoesNotRemove(t *testing.T) {
	tb := NewTable(ms(30))
	tb.Upsert("DP-1", "/a.png", t0)

	tb.Due(t0.Add(ms(40)))
	assert.Equal(t, 1, tb.Len())

	tb.Remove("DP-1")
	assert.Equal(t, 0, tb.Len())
	tb.Remove("DP-1") // no-op
}

func TestDueOrder(t *testing.T) {
	tb := NewTable(ms(30))
	tb.Upsert("HDMI-A-1", "/c.png", t0.Add(ms(2)))
	tb.Upsert("eDP-1", "/b.png", t0)
	tb.Upsert("DP-1", "/a.png", t0)

	due := tb.Due(t0.Add(ms(50)))
	require.Len(t, due, 3)
	assert.Equal(t, "DP-1", due[0].Output)
	assert.Equal(t, "eDP-1", due[1].Output)
	assert.Equal(t, "HDMI-A-1", due[2].Output)
}

func TestEarliestWait(t *testing.T) {
	tb := NewTable(ms(30))
	tb.Upsert("DP-1", "/a.png", t0)
	tb.Upsert("DP-2", "/b.png", t0.Add(ms(20)))

	w, ok := tb.EarliestWait(t0.Add(ms(5)))
	require.True(t, ok)
	assert.Equal(t, ms(25), w)

	w, ok = tb.EarliestWait(t0.Add(ms(45)))
	require.True(t, ok)
	assert.Equal(t, ms(-15), w, "overdue entries report a negative wait")
}

func TestCrossOutputIndependence(t *testing.T) {
	tb := NewTable(ms(30))
	tb.Upsert("DP-1", "/a.png", t0)

	// Churn on DP-2 must not touch DP-1.
	tb.Upsert("DP-2", "/x.png", t0.Add(ms(10)))
	tb.Upsert("DP-2", "/y.png", t0.Add(ms(20)))
	tb.Upsert("DP-2", "/x.png", t0.Add(ms(25)))

	p, _ := tb.Get("DP-1")
	assert.Equal(t, "/a.png", p.Path)
	assert.True(t, p.QueuedAt.Equal(t0))

	due := tb.Due(t0.Add(ms(30)))
	require.Len(t, due, 1)
	assert.Equal(t, "DP-1", due[0].Output)
}

// Values A, B, A inside one window: only the final A survives and its window
// starts at the B->A change.
func TestBounceCoalescesToLastValue(t *testing.T) {
	tb := NewTable(ms(30))
	tb.Upsert("out1", "X", t0)
	tb.Upsert("out1", "Y", t0.Add(ms(10)))
	tb.Upsert("out1", "X", t0.Add(ms(15)))

	assert.Empty(t, tb.Due(t0.Add(ms(30))))
	assert.Empty(t, tb.Due(t0.Add(ms(40))))

	due := tb.Due(t0.Add(ms(45)))
	require.Len(t, due, 1)
	assert.Equal(t, PendingUpdate{Output: "out1", Path: "X", QueuedAt: t0.Add(ms(15))}, due[0])
}

func TestUpsertResultString(t *testing.T) {
	assert.Equal(t, "inserted", Inserted.String())
	assert.Equal(t, "replaced", Replaced.String())
	assert.Equal(t, "unchanged", Unchanged.String())
	assert.Equal(t, "unknown", UpsertResult(42).String())
}
