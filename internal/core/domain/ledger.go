package domain

import (
	"fmt"
	"time"
)

// Card is the reward progress of one customer.
// Counters change only through Stamp and TakePresent.
type Card struct {
	CountOfStamps         int        `json:"count_of_stamps"`
	CountOfStoredPresents int        `json:"count_of_stored_presents"`
	CountOfPurchases      int        `json:"count_of_purchases"`
	CountOfGivenPresents  int        `json:"count_of_given_presents"`
	FirstTimePurchase     *time.Time `json:"first_time_purchase"`
	LastTimePurchase      *time.Time `json:"last_time_purchase"`
}

// OperatorTally counts what an employee has handed out
type OperatorTally struct {
	CountOfStamps   int `json:"count_of_stamps"`
	CountOfPresents int `json:"count_of_presents"`
}

// Stamp records one purchase on the card, performed by op.
// The stamp that brings the card to maxStamps resets progress and stores
// one present. Returns true when that rollover happened.
func (c *Card) Stamp(op *OperatorTally, maxStamps int, now time.Time) (bool, error) {
	if op == nil {
		return false, fmt.Errorf("stamp without operator: %w", ErrInvalidReference)
	}
	if maxStamps < 1 {
		return false, fmt.Errorf("max count of stamps %d: %w", maxStamps, ErrValidation)
	}

	rolledOver := c.CountOfStamps+1 >= maxStamps
	if rolledOver {
		c.CountOfStamps = 0
		c.CountOfStoredPresents++
	} else {
		c.CountOfStamps++
	}

	if c.CountOfPurchases == 0 {
		first := now
		c.FirstTimePurchase = &first
	}
	last := now
	c.LastTimePurchase = &last
	c.CountOfPurchases++

	op.CountOfStamps++
	return rolledOver, nil
}

// TakePresent redeems one stored present, handed out by op.
// Nothing changes when there is no present to give.
func (c *Card) TakePresent(op *OperatorTally) error {
	if op == nil {
		return fmt.Errorf("present without operator: %w", ErrInvalidReference)
	}
	if c.CountOfStoredPresents <= 0 {
		return ErrInsufficientRewards
	}

	c.CountOfStoredPresents--
	c.CountOfGivenPresents++
	op.CountOfPresents++
	return nil
}

// Progress renders the "stamps / max" label shown on the card
func (c *Card) Progress(maxStamps int) string {
	return fmt.Sprintf("%d / %d", c.CountOfStamps, maxStamps)
}
