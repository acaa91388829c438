// SPDX-License-Identifier: LGPL-2.1-or-later

// Package persist reads and writes the daemon's privileged state files so
// sessions, users and inhibitors survive a daemon restart. One file per
// record, one KEY=VALUE pair per line; unknown keys are tolerated, and a
// malformed file aborts that record's restoration but never the daemon.
package persist

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/elogerr"
)

// Store reads and writes state files under the runtime directory.
type Store struct {
	Dir string // e.g. /run/elogind
}

func (s *Store) sessionsDir() string { return filepath.Join(s.Dir, "sessions") }
func (s *Store) usersDir() string    { return filepath.Join(s.Dir, "users") }
func (s *Store) inhibitDir() string  { return filepath.Join(s.Dir, "inhibit") }

// EnsureLayout creates the runtime directory tree.
func (s *Store) EnsureLayout() error {
	for _, dir := range []string{s.sessionsDir(), s.usersDir(), s.inhibitDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return elogerr.Wrap(elogerr.KindIOError, "creating runtime directory", err)
		}
	}
	return nil
}

// writeRecord writes fields to path atomically and durably (fsync before
// rename, so a power failure cannot leave a torn state file), one
// KEY=VALUE per line in sorted key order so files are diffable.
func writeRecord(path string, fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, fields[k])
	}

	if err := renameio.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return elogerr.Wrap(elogerr.KindIOError, "writing state file", err)
	}
	return nil
}

// readRecord parses a state file into key=value pairs. Lines without '='
// make the record malformed; blank lines and #-comments are skipped.
func readRecord(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, elogerr.Wrap(elogerr.KindIOError, "opening state file", err)
	}
	defer f.Close()

	fields := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok || k == "" {
			return nil, elogerr.New(elogerr.KindInvalidArgument,
				fmt.Sprintf("malformed line in %s", filepath.Base(path)))
		}
		fields[k] = v
	}
	if err := sc.Err(); err != nil {
		return nil, elogerr.Wrap(elogerr.KindIOError, "reading state file", err)
	}
	return fields, nil
}

// loadDir restores every record in dir, skipping (and logging) malformed
// files per the error handling design.
func loadDir(dir, component string, restore func(name string, fields map[string]string) error) {
	log := elog.WithComponent(component)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("dir", dir).Msg("cannot read state directory")
		}
		return
	}

	for _, entry := range entries {
		// Dot-prefixed entries are pending renameio temp files left over
		// from a crash mid-write.
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		fields, err := readRecord(path)
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping unreadable state file")
			continue
		}
		if err := restore(entry.Name(), fields); err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping unrestorable record")
		}
	}
}
