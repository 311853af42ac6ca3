// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursekit/coursekit/internal/course"
	"github.com/coursekit/coursekit/internal/persistence"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type testEnv struct {
	store   *persistence.MemoryStore
	source  *course.SimSource
	gateway *course.SimGateway
	c       *Container
}

func newTestEnv(t *testing.T, successRate float64) *testEnv {
	t.Helper()
	env := &testEnv{
		store:   persistence.NewMemoryStore(),
		source:  course.NewSimSource(0),
		gateway: course.NewSimGateway(0, successRate),
	}
	env.c = New(Options{
		Bridge:       persistence.NewBridge(env.store),
		Source:       env.source,
		Payments:     env.gateway,
		RecoverDelay: 20 * time.Millisecond,
	})
	t.Cleanup(env.c.Close)
	return env
}

func fetchAndWait(t *testing.T, c *Container) {
	t.Helper()
	c.FetchCatalog(context.Background())
	require.Eventually(t, func() bool {
		s := c.State()
		return !s.Catalog.Loading && len(s.Catalog.Items) > 0
	}, waitFor, tick)
}

func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t, 1)

	env.c.Dispatch(Login{Email: "demo@example.com"})
	s := env.c.State()
	require.NotNil(t, s.Session.User)
	assert.Equal(t, "demo@example.com", s.Session.User.Email)

	// The session record is mirrored to persistence.
	raw, ok, err := env.store.Get(persistence.KeyUser)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"email":"demo@example.com"}`, raw)

	env.c.Dispatch(Logout{})
	assert.Nil(t, env.c.State().Session.User)
	_, ok, err = env.store.Get(persistence.KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHydrationSurvivesRestart(t *testing.T) {
	mem := persistence.NewMemoryStore()

	c1 := New(Options{Bridge: persistence.NewBridge(mem)})
	c1.Dispatch(Login{Email: "demo@example.com"})
	c1.Close()

	require.NoError(t, mem.Set(persistence.KeyPurchased, `["1","2"]`))

	c2 := New(Options{Bridge: persistence.NewBridge(mem)})
	defer c2.Close()
	s := c2.State()
	require.NotNil(t, s.Session.User)
	assert.Equal(t, "demo@example.com", s.Session.User.Email)
	assert.Equal(t, []string{"1", "2"}, s.Catalog.PurchasedIDs)
}

func TestFetchCatalogSuccess(t *testing.T) {
	env := newTestEnv(t, 1)
	env.source.Courses = []course.Course{{ID: "1", Title: "React Basics", Price: 19.99}}

	env.c.FetchCatalog(context.Background())
	require.Eventually(t, func() bool {
		return !env.c.State().Catalog.Loading && len(env.c.State().Catalog.Items) == 1
	}, waitFor, tick)

	got := env.c.State().Catalog
	want := CatalogState{
		Items:   []course.Course{{ID: "1", Title: "React Basics", Price: 19.99}},
		Loading: false,
		Error:   "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("catalog state mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchFailureKeepsStaleItems(t *testing.T) {
	env := newTestEnv(t, 1)
	fetchAndWait(t, env.c)
	require.Len(t, env.c.State().Catalog.Items, 2)

	env.source.Err = errors.New("origin unavailable")
	env.c.FetchCatalog(context.Background())

	require.Eventually(t, func() bool {
		s := env.c.State()
		return !s.Catalog.Loading && s.Catalog.Error != ""
	}, waitFor, tick)

	s := env.c.State()
	assert.Equal(t, "origin unavailable", s.Catalog.Error)
	// Stale data is retained, not cleared.
	assert.Len(t, s.Catalog.Items, 2)

	// The auto-recovery pass clears the error after its delay.
	require.Eventually(t, func() bool {
		return env.c.State().Catalog.Error == ""
	}, waitFor, tick)
}

func TestPurchaseSuccessIsIdempotent(t *testing.T) {
	env := newTestEnv(t, 1)
	fetchAndWait(t, env.c)

	env.c.Purchase(context.Background(), "1")
	require.Eventually(t, func() bool {
		return env.c.State().IsPurchased("1")
	}, waitFor, tick)

	// A second successful resolution for the same id must not duplicate.
	env.c.Purchase(context.Background(), "1")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"1"}, env.c.State().Catalog.PurchasedIDs)

	raw, ok, err := env.store.Get(persistence.KeyPurchased)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["1"]`, raw)
}

func TestConcurrentPurchasesSameCourse(t *testing.T) {
	env := newTestEnv(t, 1)
	env.gateway.Delay = 20 * time.Millisecond
	fetchAndWait(t, env.c)

	// No store-level dedup: both tasks run and both resolve successfully.
	env.c.Purchase(context.Background(), "1")
	env.c.Purchase(context.Background(), "1")

	require.Eventually(t, func() bool {
		return env.c.State().IsPurchased("1")
	}, waitFor, tick)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"1"}, env.c.State().Catalog.PurchasedIDs)
}

func TestPurchaseFailureMarksCourse(t *testing.T) {
	env := newTestEnv(t, 0)
	fetchAndWait(t, env.c)

	env.c.Purchase(context.Background(), "1")
	require.Eventually(t, func() bool {
		return env.c.State().Catalog.Error != ""
	}, waitFor, tick)

	s := env.c.State()
	one, ok := s.Course("1")
	require.True(t, ok)
	assert.True(t, one.IsPaymentFailed)
	two, ok := s.Course("2")
	require.True(t, ok)
	assert.False(t, two.IsPaymentFailed)
	assert.False(t, s.IsPurchased("1"))

	// Recovery resets the flag and clears the error.
	require.Eventually(t, func() bool {
		s := env.c.State()
		one, ok := s.Course("1")
		return ok && !one.IsPaymentFailed && s.Catalog.Error == ""
	}, waitFor, tick)
}

func TestPurchaseFailureForUnknownCourseIsNoOp(t *testing.T) {
	env := newTestEnv(t, 0)
	fetchAndWait(t, env.c)
	before := env.c.State().Catalog.Items

	env.c.Purchase(context.Background(), "ghost")
	require.Eventually(t, func() bool {
		return env.c.State().Catalog.Error != ""
	}, waitFor, tick)

	// The mark is silently dropped; no course is touched.
	after := env.c.State().Catalog.Items
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("items changed (-before +after):\n%s", diff)
	}
}

func TestRecordPositionRejectsNegative(t *testing.T) {
	env := newTestEnv(t, 1)

	env.c.Dispatch(OpenVideo{CourseID: "1"})
	env.c.Dispatch(RecordPosition{Seconds: 17})
	env.c.Dispatch(RecordPosition{Seconds: -1})
	assert.Equal(t, 17.0, env.c.State().Playback.PlaybackPosition)
}

func TestCloseThenOpenRestoresOffset(t *testing.T) {
	env := newTestEnv(t, 1)

	env.c.Dispatch(OpenVideo{CourseID: "1"})
	env.c.Dispatch(RecordPosition{Seconds: 42})
	env.c.Dispatch(CloseVideo{})

	raw, ok, err := env.store.Get(persistence.PositionKey("1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "42", raw)

	s := env.c.State()
	assert.False(t, s.Playback.IsOpen)
	assert.Equal(t, "", s.Playback.CurrentCourseID)

	env.c.Dispatch(OpenVideo{CourseID: "1"})
	s = env.c.State()
	assert.True(t, s.Playback.IsOpen)
	assert.Equal(t, "1", s.Playback.CurrentCourseID)
	assert.Equal(t, 42.0, s.Playback.PlaybackPosition)
}

func TestOpenWithoutSavedOffsetKeepsPosition(t *testing.T) {
	env := newTestEnv(t, 1)

	env.c.Dispatch(OpenVideo{CourseID: "1"})
	s := env.c.State()
	assert.True(t, s.Playback.IsOpen)
	assert.Equal(t, 0.0, s.Playback.PlaybackPosition)

	// Stale in-memory position from another course is preserved when the
	// newly opened course has no persisted offset.
	env.c.Dispatch(RecordPosition{Seconds: 9})
	env.c.Dispatch(CloseVideo{})
	_ = env.store.Remove(persistence.PositionKey("1"))
	env.c.Dispatch(OpenVideo{CourseID: "2"})
	assert.Equal(t, 9.0, env.c.State().Playback.PlaybackPosition)
}

func TestCloseWithZeroPositionPersistsNothing(t *testing.T) {
	env := newTestEnv(t, 1)

	env.c.Dispatch(OpenVideo{CourseID: "1"})
	env.c.Dispatch(CloseVideo{})
	_, ok, err := env.store.Get(persistence.PositionKey("1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubscribersSeeCommittedChanges(t *testing.T) {
	env := newTestEnv(t, 1)

	var mu sync.Mutex
	var seen []string
	cancel := env.c.Subscribe(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.Session.User != nil {
			seen = append(seen, s.Session.User.Email)
		} else {
			seen = append(seen, "")
		}
	})

	env.c.Dispatch(Login{Email: "a@b.c"})
	env.c.Dispatch(Logout{})

	mu.Lock()
	got := append([]string(nil), seen...)
	mu.Unlock()
	assert.Equal(t, []string{"a@b.c", ""}, got)

	cancel()
	env.c.Dispatch(Login{Email: "later@b.c"})
	mu.Lock()
	assert.Len(t, seen, 2)
	mu.Unlock()
}

func TestSnapshotIsolation(t *testing.T) {
	env := newTestEnv(t, 1)
	fetchAndWait(t, env.c)

	s := env.c.State()
	s.Catalog.Items[0].Title = "mutated"
	s.Catalog.PurchasedIDs = append(s.Catalog.PurchasedIDs, "999")

	fresh := env.c.State()
	assert.Equal(t, "React Basics", fresh.Catalog.Items[0].Title)
	assert.False(t, fresh.IsPurchased("999"))
}

func TestInFlightTracker(t *testing.T) {
	f := NewInFlight()

	require.True(t, f.TryBegin("1"))
	assert.False(t, f.TryBegin("1"))
	assert.True(t, f.TryBegin("2"))
	assert.Equal(t, 2, f.Active())

	f.End("1")
	assert.True(t, f.TryBegin("1"))
	f.End("missing") // no-op
}
