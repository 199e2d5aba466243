package net

import (
	"bytes"
	stdnet "net"
	"testing"
	"time"

	"github.com/l1jgo/entitycore/internal/net/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte{1, 2, 3}))
	assert.Equal(t, []byte{5, 0, 1, 2, 3}, buf.Bytes())

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	assert.Error(t, WriteFrame(&buf, nil))
	_, err = ReadFrame(bytes.NewReader([]byte{2, 0}))
	assert.Error(t, err, "empty payload")
	_, err = ReadFrame(bytes.NewReader([]byte{9, 0, 1}))
	assert.Error(t, err, "truncated payload")
}

type client struct {
	t    *testing.T
	conn stdnet.Conn
}

func dial(t *testing.T, s *Server) *client {
	t.Helper()
	conn, err := stdnet.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &client{t: t, conn: conn}
}

func (c *client) read() *packet.Reader {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	data, err := ReadFrame(c.conn)
	require.NoError(c.t, err)
	return packet.NewReader(data)
}

func (c *client) send(data []byte) {
	c.t.Helper()
	require.NoError(c.t, WriteFrame(c.conn, data))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer("127.0.0.1:0", "test", 16, nil)
	require.NoError(t, err)
	go s.AcceptLoop()
	t.Cleanup(s.Shutdown)
	return s
}

func TestServer_HelloAndPing(t *testing.T) {
	s := newTestServer(t)
	c := dial(t, s)

	r := c.read()
	require.Equal(t, packet.S_OPCODE_HELLO, r.Opcode())
	assert.Equal(t, uint16(packet.ProtocolVersion), r.ReadH())
	assert.Equal(t, "test", r.ReadS())

	c.send(packet.BuildPing(77))
	r = c.read()
	require.Equal(t, packet.S_OPCODE_PONG, r.Opcode())
	assert.Equal(t, int32(77), r.ReadD())
}

func TestServer_PublishRespectsSubscriptions(t *testing.T) {
	s := newTestServer(t)
	all := dial(t, s)
	one := dial(t, s)
	idle := dial(t, s)
	for _, c := range []*client{all, one, idle} {
		c.read() // hello
	}
	require.Eventually(t, func() bool { return s.SessionCount() == 3 }, 5*time.Second, 10*time.Millisecond)

	all.send(packet.BuildSubscribe(""))
	one.send(packet.BuildSubscribe("world-1"))
	// Pings are answered in order, so a pong proves the subscribe was handled.
	for _, c := range []*client{all, one} {
		c.send(packet.BuildPing(1))
		require.Equal(t, packet.S_OPCODE_PONG, c.read().Opcode())
	}

	assert.Equal(t, 1, s.Publish(packet.WorldDigest{World: "world-0", Tick: 1, Digest: 10}))
	assert.Equal(t, 2, s.Publish(packet.WorldDigest{World: "world-1", Tick: 1, Digest: 11}))

	r := all.read()
	require.Equal(t, packet.S_OPCODE_WORLD_DIGEST, r.Opcode())
	assert.Equal(t, "world-0", packet.ParseWorldDigest(r).World)
	assert.Equal(t, uint64(11), packet.ParseWorldDigest(all.read()).Digest)
	assert.Equal(t, "world-1", packet.ParseWorldDigest(one.read()).World)

	one.send(packet.BuildUnsubscribe())
	one.send(packet.BuildPing(2))
	one.read()
	assert.Equal(t, 1, s.Publish(packet.WorldDigest{World: "world-1", Tick: 2}))
}

func TestServer_DisconnectRemovesSession(t *testing.T) {
	s := newTestServer(t)
	c := dial(t, s)
	c.read()
	require.Eventually(t, func() bool { return s.SessionCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	c.conn.Close()
	require.Eventually(t, func() bool { return s.SessionCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}
