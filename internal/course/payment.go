// SPDX-License-Identifier: MIT

package course

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrPaymentDeclined is the simulated gateway's decline outcome.
var ErrPaymentDeclined = errors.New("payment declined")

// PaymentGateway charges the signed-in user for one course.
type PaymentGateway interface {
	Charge(ctx context.Context, courseID string) error
}

// SimGateway simulates payment outcomes: after Delay, a charge succeeds
// with probability SuccessRate and is declined otherwise.
type SimGateway struct {
	Delay       time.Duration
	SuccessRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimGateway builds a gateway with the given delay and success rate.
func NewSimGateway(delay time.Duration, successRate float64) *SimGateway {
	return &SimGateway{
		Delay:       delay,
		SuccessRate: successRate,
		rng:         rand.New(rand.NewSource(int64(rand.Uint64()))),
	}
}

func (g *SimGateway) Charge(ctx context.Context, courseID string) error {
	if err := sleep(ctx, g.Delay); err != nil {
		return err
	}
	g.mu.Lock()
	roll := g.rng.Float64()
	g.mu.Unlock()
	if roll < g.SuccessRate {
		return nil
	}
	return ErrPaymentDeclined
}

var _ PaymentGateway = (*SimGateway)(nil)
