// SPDX-License-Identifier: LGPL-2.1-or-later

// Package seatmodel defines the entities the daemon tracks: devices, seats,
// sessions, users, inhibitors and buttons, plus the wire shape of the
// hot-plug events that drive device/seat assignment.
package seatmodel

import "regexp"

// seatNameRe matches the seat-id grammar from the hot-plug dispatcher design:
// alphanumeric plus '-', leading letter, bounded length.
var seatNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]{0,254}$`)

// DefaultSeat is the seat id assumed when ID_SEAT is absent or empty.
const DefaultSeat = "seat0"

// IsValidSeatName reports whether id conforms to the seat-name grammar.
func IsValidSeatName(id string) bool {
	return seatNameRe.MatchString(id)
}
