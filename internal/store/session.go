// SPDX-License-Identifier: MIT

package store

import "github.com/coursekit/coursekit/internal/persistence"

// reduceSession handles session intents. Both operations are total: login
// unconditionally sets the user and mirrors it to persistence, logout
// clears it and removes the record.
func reduceSession(s SessionState, in Intent) (SessionState, []effect, bool) {
	switch v := in.(type) {
	case Login:
		email := v.Email
		s.User = &User{Email: email}
		return s, []effect{func(b *persistence.Bridge) {
			_ = b.SaveUser(email)
		}}, true

	case Logout:
		s.User = nil
		return s, []effect{func(b *persistence.Bridge) {
			_ = b.RemoveUser()
		}}, true
	}
	return s, nil, false
}
