// SPDX-License-Identifier: MIT

// Package course defines the catalog model and the external ports the
// catalog workflows depend on: the catalog source and the payment gateway.
package course

// Course is one purchasable catalog entry. IDs are stable and assigned by
// the catalog source, never generated client-side.
type Course struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	VideoURL        string  `json:"videoUrl"`
	Price           float64 `json:"price"`
	IsPaymentFailed bool    `json:"isPaymentFailed"`
}

// CloneAll returns a deep copy of a course list.
func CloneAll(items []Course) []Course {
	if items == nil {
		return nil
	}
	out := make([]Course, len(items))
	copy(out, items)
	return out
}

// ResetPaymentFlags returns a copy of items with every IsPaymentFailed
// flag cleared.
func ResetPaymentFlags(items []Course) []Course {
	out := CloneAll(items)
	for i := range out {
		out[i].IsPaymentFailed = false
	}
	return out
}
