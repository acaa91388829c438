// SPDX-License-Identifier: LGPL-2.1-or-later

package procsession

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/registry"
	"github.com/markhindley/elogind/internal/seatmodel"
)

type fakeClassifier struct {
	byPID map[int]string
	err   error
}

func (f *fakeClassifier) SessionIDForPID(pid int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.byPID[pid], nil
}

func newResolver(t *testing.T) (*Resolver, *fakeClassifier, *registry.Registries) {
	t.Helper()
	reg := registry.New(registry.Limits{})
	cl := &fakeClassifier{byPID: make(map[int]string)}
	return &Resolver{Classifier: cl, Reg: reg}, cl, reg
}

func TestSessionOfInvalidPID(t *testing.T) {
	r, _, _ := newResolver(t)
	_, _, err := r.SessionOf(0)
	require.ErrorIs(t, err, elogerr.InvalidArgument)
	_, _, err = r.SessionOf(-7)
	require.ErrorIs(t, err, elogerr.InvalidArgument)
}

func TestSessionOfNoSessionIsNotAnError(t *testing.T) {
	r, _, _ := newResolver(t)
	sess, ok, err := r.SessionOf(1234)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, sess)
}

func TestSessionOfClassifierFailureIsNotAnError(t *testing.T) {
	r, cl, _ := newResolver(t)
	cl.err = errors.New("cgroup walk failed")
	_, ok, err := r.SessionOf(1234)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSessionOfAndUserOf(t *testing.T) {
	r, cl, reg := newResolver(t)

	user, err := reg.Users.Add(1000, registry.NewUserParams{Name: "alice"})
	require.NoError(t, err)
	sess, err := reg.Sessions.Add("s7", registry.NewSessionParams{UID: 1000})
	require.NoError(t, err)
	reg.BindSessionToUser(sess, user)

	cl.byPID[42] = "s7"

	got, ok, err := r.SessionOf(42)
	require.NoError(t, err)
	require.True(t, ok)
	require.Same(t, sess, got)

	u, ok, err := r.UserOf(42)
	require.NoError(t, err)
	require.True(t, ok)
	require.Same(t, user, u)
}

func TestSessionStateForPID(t *testing.T) {
	r, cl, reg := newResolver(t)
	sess, _ := reg.Sessions.Add("s1", registry.NewSessionParams{UID: 1})
	sess.State = seatmodel.SessionActive
	cl.byPID[9] = "s1"

	state, ok := r.SessionStateForPID(9)
	require.True(t, ok)
	require.Equal(t, seatmodel.SessionActive, state)

	_, ok = r.SessionStateForPID(10)
	require.False(t, ok)
}
