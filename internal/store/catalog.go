// SPDX-License-Identifier: MIT

package store

import (
	"slices"

	"github.com/coursekit/coursekit/internal/course"
	"github.com/coursekit/coursekit/internal/persistence"
)

// reduceCatalog handles catalog task transitions.
func reduceCatalog(s CatalogState, in Intent) (CatalogState, []effect, bool) {
	switch v := in.(type) {
	case fetchStarted:
		s.Loading = true
		s.Error = ""
		return s, nil, true

	case fetchSucceeded:
		s.Items = course.CloneAll(v.items)
		s.Loading = false
		return s, nil, true

	case fetchFailed:
		// Stale items are retained so consumers never flash empty.
		s.Loading = false
		s.Error = v.reason
		return s, nil, true

	case purchaseStarted:
		// No store-level in-flight guard; see InFlight for the opt-in one.
		return s, nil, true

	case purchaseSucceeded:
		id := v.task.CourseID
		if slices.Contains(s.PurchasedIDs, id) {
			// Duplicate success resolution: idempotent, nothing rewritten.
			return s, nil, true
		}
		ids := make([]string, len(s.PurchasedIDs), len(s.PurchasedIDs)+1)
		copy(ids, s.PurchasedIDs)
		ids = append(ids, id)
		s.PurchasedIDs = ids
		return s, []effect{func(b *persistence.Bridge) {
			_ = b.SavePurchased(ids)
		}}, true

	case purchaseFailed:
		s.Error = v.reason
		// Mark the course the task was started for. If a concurrent fetch
		// removed it, the mark is silently dropped.
		for i := range s.Items {
			if s.Items[i].ID == v.task.CourseID {
				items := course.CloneAll(s.Items)
				items[i].IsPaymentFailed = true
				s.Items = items
				break
			}
		}
		return s, nil, true

	case recoverStarted:
		return s, nil, true

	case recoverFinished:
		// Full replace with the reload's snapshot. The snapshot was taken
		// when the recovery task started, so a newer failure flag can be
		// overwritten here; resolutions apply in completion order.
		s.Items = course.CloneAll(v.items)
		s.Error = ""
		return s, nil, true
	}
	return s, nil, false
}
