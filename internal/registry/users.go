// SPDX-License-Identifier: LGPL-2.1-or-later

package registry

import (
	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// UserTable is the users registry, keyed by numeric uid.
type UserTable struct {
	byUID   map[uint32]*seatmodel.User
	maxSize int
}

// NewUserTable constructs an empty user table.
func NewUserTable(maxSize int) *UserTable {
	return &UserTable{byUID: make(map[uint32]*seatmodel.User), maxSize: maxSize}
}

// NewUserParams carries the construction-only attributes of a user.
type NewUserParams struct {
	GID  uint32
	Name string
}

// Add resolves to the existing user if uid is known; otherwise allocates
// one using params.
func (t *UserTable) Add(uid uint32, params NewUserParams) (*seatmodel.User, error) {
	if u, ok := t.byUID[uid]; ok {
		return u, nil
	}
	if t.maxSize > 0 && len(t.byUID) >= t.maxSize {
		return nil, elogerr.New(elogerr.KindOutOfResources, "user table full")
	}
	u := &seatmodel.User{UID: uid, GID: params.GID, Name: params.Name}
	t.byUID[uid] = u
	return u, nil
}

// Get returns the user with uid, or nil if absent.
func (t *UserTable) Get(uid uint32) *seatmodel.User {
	return t.byUID[uid]
}

// Free removes the user record unconditionally.
func (t *UserTable) Free(uid uint32) {
	delete(t.byUID, uid)
}

// All returns every user.
func (t *UserTable) All() []*seatmodel.User {
	out := make([]*seatmodel.User, 0, len(t.byUID))
	for _, u := range t.byUID {
		out = append(out, u)
	}
	return out
}

// Len returns the number of tracked users.
func (t *UserTable) Len() int { return len(t.byUID) }
