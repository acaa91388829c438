// SPDX-License-Identifier: LGPL-2.1-or-later

package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// SessionRecord is the persisted slice of a session: enough to re-adopt
// it after a daemon restart.
type SessionRecord struct {
	ID         string
	UID        uint32
	Seat       string
	Controller string
	Leader     int
	TTY        int
	Class      seatmodel.SessionClass
	Type       seatmodel.SessionType
}

// SaveSession writes the session's state file.
func (s *Store) SaveSession(rec SessionRecord) error {
	if rec.ID == "" {
		return elogerr.New(elogerr.KindInvalidArgument, "session record without id")
	}
	fields := map[string]string{
		"UID":   strconv.FormatUint(uint64(rec.UID), 10),
		"CLASS": string(rec.Class),
		"TYPE":  string(rec.Type),
	}
	if rec.Seat != "" {
		fields["SEAT"] = rec.Seat
	}
	if rec.Controller != "" {
		fields["CONTROLLER"] = rec.Controller
	}
	if rec.Leader > 0 {
		fields["LEADER"] = strconv.Itoa(rec.Leader)
	}
	if rec.TTY > 0 {
		fields["TTY"] = strconv.Itoa(rec.TTY)
	}
	return writeRecord(filepath.Join(s.sessionsDir(), rec.ID), fields)
}

// DropSession removes the session's state file. Removing an absent file
// is not an error.
func (s *Store) DropSession(id string) {
	_ = os.Remove(filepath.Join(s.sessionsDir(), id))
}

// LoadSessions restores every persisted session, invoking restore per
// record. Malformed records are skipped with a warning.
func (s *Store) LoadSessions(restore func(SessionRecord) error) {
	loadDir(s.sessionsDir(), "persist", func(name string, fields map[string]string) error {
		rec := SessionRecord{ID: name}

		uid, ok := fields["UID"]
		if !ok {
			return fmt.Errorf("session %s: missing UID", name)
		}
		n, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return fmt.Errorf("session %s: bad UID: %w", name, err)
		}
		rec.UID = uint32(n)

		rec.Seat = fields["SEAT"]
		rec.Controller = fields["CONTROLLER"]
		rec.Class = seatmodel.SessionClass(fields["CLASS"])
		rec.Type = seatmodel.SessionType(fields["TYPE"])
		if v := fields["LEADER"]; v != "" {
			if rec.Leader, err = strconv.Atoi(v); err != nil {
				return fmt.Errorf("session %s: bad LEADER: %w", name, err)
			}
		}
		if v := fields["TTY"]; v != "" {
			if rec.TTY, err = strconv.Atoi(v); err != nil {
				return fmt.Errorf("session %s: bad TTY: %w", name, err)
			}
		}
		return restore(rec)
	})
}

// UserRecord is the persisted slice of a user.
type UserRecord struct {
	UID    uint32
	GID    uint32
	Name   string
	Linger bool
}

// SaveUser writes the user's state file, keyed by uid.
func (s *Store) SaveUser(rec UserRecord) error {
	fields := map[string]string{
		"NAME":   rec.Name,
		"GID":    strconv.FormatUint(uint64(rec.GID), 10),
		"LINGER": strconv.FormatBool(rec.Linger),
	}
	return writeRecord(filepath.Join(s.usersDir(), strconv.FormatUint(uint64(rec.UID), 10)), fields)
}

// DropUser removes the user's state file.
func (s *Store) DropUser(uid uint32) {
	_ = os.Remove(filepath.Join(s.usersDir(), strconv.FormatUint(uint64(uid), 10)))
}

// LoadUsers restores every persisted user.
func (s *Store) LoadUsers(restore func(UserRecord) error) {
	loadDir(s.usersDir(), "persist", func(name string, fields map[string]string) error {
		uid, err := strconv.ParseUint(name, 10, 32)
		if err != nil {
			return fmt.Errorf("user file %s: name is not a uid: %w", name, err)
		}
		rec := UserRecord{UID: uint32(uid), Name: fields["NAME"]}
		if v := fields["GID"]; v != "" {
			gid, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return fmt.Errorf("user %s: bad GID: %w", name, err)
			}
			rec.GID = uint32(gid)
		}
		if v := fields["LINGER"]; v != "" {
			if rec.Linger, err = strconv.ParseBool(v); err != nil {
				return fmt.Errorf("user %s: bad LINGER: %w", name, err)
			}
		}
		return restore(rec)
	})
}

// InhibitorRecord is the persisted slice of an inhibitor. FifoPath lets a
// restarted daemon reopen its end of the fifo and keep honoring the
// client's hold.
type InhibitorRecord struct {
	ID       string
	What     seatmodel.InhibitWhat
	Mode     seatmodel.InhibitMode
	Who      string
	Why      string
	UID      uint32
	PID      int
	FifoPath string
}

// SaveInhibitor writes the inhibitor's state file.
func (s *Store) SaveInhibitor(rec InhibitorRecord) error {
	if rec.ID == "" {
		return elogerr.New(elogerr.KindInvalidArgument, "inhibitor record without id")
	}
	fields := map[string]string{
		"WHAT": rec.What.String(),
		"MODE": string(rec.Mode),
		"WHO":  rec.Who,
		"WHY":  rec.Why,
		"UID":  strconv.FormatUint(uint64(rec.UID), 10),
		"PID":  strconv.Itoa(rec.PID),
		"FIFO": rec.FifoPath,
	}
	return writeRecord(filepath.Join(s.inhibitDir(), rec.ID), fields)
}

// DropInhibitor removes the inhibitor's state file.
func (s *Store) DropInhibitor(id string) {
	_ = os.Remove(filepath.Join(s.inhibitDir(), id))
}

// LoadInhibitors restores every persisted inhibitor.
func (s *Store) LoadInhibitors(restore func(InhibitorRecord) error) {
	loadDir(s.inhibitDir(), "persist", func(name string, fields map[string]string) error {
		what, ok := seatmodel.ParseInhibitWhat(fields["WHAT"])
		if !ok {
			return fmt.Errorf("inhibitor %s: bad WHAT %q", name, fields["WHAT"])
		}
		mode := seatmodel.InhibitMode(fields["MODE"])
		if mode != seatmodel.ModeBlock && mode != seatmodel.ModeDelay {
			return fmt.Errorf("inhibitor %s: bad MODE %q", name, fields["MODE"])
		}
		rec := InhibitorRecord{
			ID:       name,
			What:     what,
			Mode:     mode,
			Who:      fields["WHO"],
			Why:      fields["WHY"],
			FifoPath: fields["FIFO"],
		}
		if v := fields["UID"]; v != "" {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return fmt.Errorf("inhibitor %s: bad UID: %w", name, err)
			}
			rec.UID = uint32(n)
		}
		if v := fields["PID"]; v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("inhibitor %s: bad PID: %w", name, err)
			}
			rec.PID = n
		}
		return restore(rec)
	})
}
