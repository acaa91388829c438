// SPDX-License-Identifier: LGPL-2.1-or-later

package busgate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markhindley/elogind/internal/elogerr"
)

func TestToDBusMapsKinds(t *testing.T) {
	cases := []struct {
		err  error
		name string
	}{
		{elogerr.New(elogerr.KindOutOfResources, "table full"), ErrNameNoMemory},
		{elogerr.New(elogerr.KindInvalidArgument, "bad seat"), ErrNameInvalidArgs},
		{elogerr.New(elogerr.KindNotFound, "no session"), ErrNameNotFound},
		{elogerr.New(elogerr.KindPermissionDenied, "nope"), ErrNameAccessDenied},
		{elogerr.New(elogerr.KindBusy, "vt in use"), ErrNameDeviceBusy},
		{elogerr.New(elogerr.KindIOError, "sysfs"), ErrNameIOError},
		{elogerr.New(elogerr.KindUnsupported, "no hibernate"), ErrNameNotSupported},
		{errors.New("anything else"), ErrNameFailed},
	}
	for _, tc := range cases {
		derr := ToDBus(tc.err)
		require.NotNil(t, derr)
		require.Equal(t, tc.name, derr.Name)
	}
}

func TestToDBusNil(t *testing.T) {
	require.Nil(t, ToDBus(nil))
}

func TestToDBusWrappedError(t *testing.T) {
	wrapped := elogerr.Wrap(elogerr.KindBusy, "gate", errors.New("blocked"))
	require.Equal(t, ErrNameDeviceBusy, ToDBus(wrapped).Name)
}
