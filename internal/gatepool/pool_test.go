package gatepool

import (
	"testing"

	"github.com/benthomasson/ftl-go/internal/wire"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	closed bool
}

func (f *fakeSession) Dispatch(tag string, body any) (wire.Frame, error) {
	return wire.Frame{Tag: tag}, nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func TestAcquireMissingReturnsNil(t *testing.T) {
	p := New()
	require.Nil(t, p.Acquire("web1"))
}

func TestReleaseThenAcquireRoundTrips(t *testing.T) {
	p := New()
	session := &fakeSession{}
	p.Release("web1", &Handle{Session: session, ArtifactHash: "abc"})

	h := p.Acquire("web1")
	require.NotNil(t, h)
	require.Equal(t, "abc", h.ArtifactHash)

	require.Nil(t, p.Acquire("web1"), "acquire removes the handle from the pool")
}

func TestEvictOneClosesAndReportsPresence(t *testing.T) {
	p := New()
	require.False(t, p.EvictOne())

	session := &fakeSession{}
	p.Release("web1", &Handle{Session: session})
	require.True(t, p.EvictOne())
	require.True(t, session.closed)
	require.Nil(t, p.Acquire("web1"))
}

func TestDrainClosesEveryHandle(t *testing.T) {
	p := New()
	s1, s2 := &fakeSession{}, &fakeSession{}
	p.Release("web1", &Handle{Session: s1})
	p.Release("web2", &Handle{Session: s2})

	p.Drain()
	require.True(t, s1.closed)
	require.True(t, s2.closed)
	require.Nil(t, p.Acquire("web1"))
	require.Nil(t, p.Acquire("web2"))
}
