// SPDX-License-Identifier: MIT

package course

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimSourceServesSeedCatalog(t *testing.T) {
	src := NewSimSource(0)

	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, 19.99, items[0].Price)
	assert.Equal(t, "2", items[1].ID)
	assert.False(t, items[0].IsPaymentFailed)
}

func TestSimSourceReturnsCopies(t *testing.T) {
	src := NewSimSource(0)

	first, err := src.Fetch(context.Background())
	require.NoError(t, err)
	first[0].Title = "mutated"

	second, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "React Basics", second[0].Title)
}

func TestSimSourceFailureInjection(t *testing.T) {
	boom := errors.New("origin unavailable")
	src := &SimSource{Courses: Seed(), Err: boom}

	_, err := src.Fetch(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSimSourceHonorsContext(t *testing.T) {
	src := NewSimSource(5 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimGatewayDeterministicAtRateBounds(t *testing.T) {
	always := NewSimGateway(0, 1.0)
	never := NewSimGateway(0, 0.0)

	for i := 0; i < 20; i++ {
		assert.NoError(t, always.Charge(context.Background(), "1"))
		assert.ErrorIs(t, never.Charge(context.Background(), "1"), ErrPaymentDeclined)
	}
}

func TestResetPaymentFlags(t *testing.T) {
	items := Seed()
	items[0].IsPaymentFailed = true
	items[1].IsPaymentFailed = true

	reset := ResetPaymentFlags(items)
	assert.False(t, reset[0].IsPaymentFailed)
	assert.False(t, reset[1].IsPaymentFailed)
	// Input is untouched.
	assert.True(t, items[0].IsPaymentFailed)
}
