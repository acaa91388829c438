// SPDX-License-Identifier: LGPL-2.1-or-later

// Package busgate maps the core's structured error kinds onto the D-Bus
// error names a bus glue layer reports to clients. The transport and
// method dispatch themselves stay outside the core; this package only
// supplies the name table so every glue implementation agrees on the
// mapping.
package busgate

import (
	"errors"

	"github.com/godbus/dbus/v5"

	"github.com/markhindley/elogind/internal/elogerr"
)

// Well-known D-Bus error names for the core's error kinds.
const (
	ErrNameNoMemory        = "org.freedesktop.DBus.Error.NoMemory"
	ErrNameInvalidArgs     = "org.freedesktop.DBus.Error.InvalidArgs"
	ErrNameNotFound        = "org.freedesktop.login1.NoSuchObject"
	ErrNameAccessDenied    = "org.freedesktop.DBus.Error.AccessDenied"
	ErrNameDeviceBusy      = "org.freedesktop.login1.OperationInProgress"
	ErrNameIOError         = "org.freedesktop.DBus.Error.IOError"
	ErrNameNotSupported    = "org.freedesktop.DBus.Error.NotSupported"
	ErrNameFailed          = "org.freedesktop.DBus.Error.Failed"
)

var kindToName = map[elogerr.Kind]string{
	elogerr.KindOutOfResources:   ErrNameNoMemory,
	elogerr.KindInvalidArgument:  ErrNameInvalidArgs,
	elogerr.KindNotFound:         ErrNameNotFound,
	elogerr.KindPermissionDenied: ErrNameAccessDenied,
	elogerr.KindBusy:             ErrNameDeviceBusy,
	elogerr.KindIOError:          ErrNameIOError,
	elogerr.KindUnsupported:      ErrNameNotSupported,
}

// ToDBus converts err into the dbus.Error a method handler returns.
// Errors that are not the core's structured kind map to the generic
// Failed name; nil passes through.
func ToDBus(err error) *dbus.Error {
	if err == nil {
		return nil
	}
	name := ErrNameFailed
	var e *elogerr.Error
	if errors.As(err, &e) {
		if n, ok := kindToName[e.Kind]; ok {
			name = n
		}
	}
	return dbus.NewError(name, []interface{}{err.Error()})
}
