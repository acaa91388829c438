// SPDX-License-Identifier: LGPL-2.1-or-later

// Package sysfsdrm enumerates DRM connectors by walking /sys/class/drm.
// Only entries whose parent device lives in the drm subsystem are
// connectors; the cards themselves hang off pci/platform and are skipped.
package sysfsdrm

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/markhindley/elogind/internal/dock"
	"github.com/markhindley/elogind/internal/elogerr"
)

// Enumerator walks a sysfs tree for DRM connectors.
type Enumerator struct {
	// Root overrides /sys/class/drm for tests.
	Root string
}

func (e *Enumerator) root() string {
	if e.Root != "" {
		return e.Root
	}
	return "/sys/class/drm"
}

// ListConnectors implements dock.DRMEnumerator.
func (e *Enumerator) ListConnectors() ([]dock.Connector, error) {
	entries, err := os.ReadDir(e.root())
	if err != nil {
		return nil, elogerr.Wrap(elogerr.KindIOError, "reading drm class directory", err)
	}

	var out []dock.Connector
	for _, entry := range entries {
		name := entry.Name()
		if !e.parentIsDRM(name) {
			continue
		}

		status, err := os.ReadFile(filepath.Join(e.root(), name, "status"))
		if err != nil {
			// Connector without a status sysattr; skip it rather than
			// failing the whole enumeration.
			continue
		}
		out = append(out, dock.Connector{
			Name:   name,
			Status: strings.TrimSpace(string(status)),
		})
	}
	return out, nil
}

// parentIsDRM reports whether the entry's parent device belongs to the
// drm subsystem, distinguishing connectors (parent is the card, subsystem
// drm) from cards (parent is the pci/platform device).
func (e *Enumerator) parentIsDRM(name string) bool {
	link, err := os.Readlink(filepath.Join(e.root(), name, "device", "subsystem"))
	if err != nil {
		return false
	}
	return filepath.Base(link) == "drm"
}
