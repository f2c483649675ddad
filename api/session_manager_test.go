package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/opcode"
	"github.com/cpunch-go/luadecompy/internal/undump"
)

func sampleImage(t *testing.T) []byte {
	t.Helper()
	proto := &bytecode.Prototype{
		Instructions: []bytecode.Instruction{{Op: opcode.OpReturn}},
	}
	data, err := undump.NewEncoder(undump.DefaultHeader()).Encode(proto)
	require.NoError(t, err, "Encode")
	return data
}

func TestSessionManagerCreateGetDestroy(t *testing.T) {
	sm := NewSessionManager(NewBroadcaster())

	session, err := sm.CreateSession(sampleImage(t))
	require.NoError(t, err, "CreateSession")
	assert.NotEmpty(t, session.ID, "expected non-empty session ID")

	_, err = sm.GetSession(session.ID)
	require.NoError(t, err, "GetSession")

	require.NoError(t, sm.DestroySession(session.ID))

	_, err = sm.GetSession(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionManagerBadImage(t *testing.T) {
	sm := NewSessionManager(NewBroadcaster())
	_, err := sm.CreateSession([]byte("not a lua chunk"))
	assert.Error(t, err, "expected error decoding invalid bytecode")
}

func TestSessionManagerUniqueIDs(t *testing.T) {
	sm := NewSessionManager(NewBroadcaster())
	data := sampleImage(t)

	a, err := sm.CreateSession(data)
	require.NoError(t, err, "CreateSession a")
	b, err := sm.CreateSession(data)
	require.NoError(t, err, "CreateSession b")
	assert.NotEqual(t, a.ID, b.ID, "expected distinct session IDs")
}
