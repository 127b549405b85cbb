package room

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landlord/internal/protocol"
	"landlord/internal/session"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// testClient wraps one pipe-connected client side for scripted interaction
// with a Room's game loop: read delta frames, send raw commands.
type testClient struct {
	conn net.Conn
	r    *bufio.Reader
}

func newTestClient(conn net.Conn) *testClient {
	return &testClient{conn: conn, r: bufio.NewReader(conn)}
}

func (c *testClient) tryNext() (protocol.Message, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		return protocol.Message{}, err
	}
	var msg protocol.Message
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		return protocol.Message{}, err
	}
	return msg, nil
}

func (c *testClient) next(t *testing.T) protocol.Message {
	t.Helper()
	msg, err := c.tryNext()
	require.NoError(t, err)
	return msg
}

func (c *testClient) waitForState(t *testing.T, want int) {
	t.Helper()
	for {
		msg := c.next(t)
		upd, err := protocol.DecodeUpdate(msg)
		require.NoError(t, err)
		if upd.State != nil && *upd.State == want {
			return
		}
	}
}

func (c *testClient) send(t *testing.T, cmd string) {
	t.Helper()
	_, err := c.conn.Write([]byte(cmd))
	require.NoError(t, err)
}

// drainForever discards bytes until the peer closes, for seats that the
// test script never needs to prompt.
func drainForever(conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

func newRoomForTest(t *testing.T, name string, clock quartz.Clock) *Room {
	t.Helper()
	return New(name, zerolog.Nop(), rand.New(rand.NewSource(1)), clock)
}

func newPipedSession(t *testing.T, name string, clock quartz.Clock) (*session.Session, *testClient) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { _ = server.Close(); _ = client.Close() })
	sess := session.New(server, name, testLogger(), clock, time.Hour)
	sess.Start()
	t.Cleanup(func() { _ = sess.Close() })
	return sess, newTestClient(client)
}

func TestJoinRejectsFourthPlayer(t *testing.T) {
	clock := quartz.NewMock(t)
	r := newRoomForTest(t, "lobby", clock)

	for i := 0; i < 3; i++ {
		sess, tc := newPipedSession(t, fmt.Sprintf("p%d", i), clock)
		go drainForever(tc.conn)
		require.NoError(t, r.Join(sess))
	}

	fourth, tc := newPipedSession(t, "latecomer", clock)
	require.NoError(t, r.Join(fourth))

	msg := tc.next(t)
	assert.Equal(t, protocol.CodeInfo, msg.Code)
	assert.Contains(t, msg.Data.(string), "满")
}

func TestJoinBroadcastsRosterToEveryJoinedSeat(t *testing.T) {
	clock := quartz.NewMock(t)
	r := newRoomForTest(t, "lobby", clock)

	sess0, tc0 := newPipedSession(t, "alice", clock)
	require.NoError(t, r.Join(sess0))

	msg := tc0.next(t)
	upd, err := protocol.DecodeUpdate(msg)
	require.NoError(t, err)
	require.NotNil(t, upd.MyIndex)
	assert.Equal(t, 0, *upd.MyIndex)
	assert.Equal(t, []string{"alice"}, upd.NameList)

	sess1, tc1 := newPipedSession(t, "bob", clock)
	require.NoError(t, r.Join(sess1))

	// alice hears about bob joining too.
	msg = tc0.next(t)
	upd, err = protocol.DecodeUpdate(msg)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, upd.NameList)

	msg = tc1.next(t)
	upd, err = protocol.DecodeUpdate(msg)
	require.NoError(t, err)
	require.NotNil(t, upd.MyIndex)
	assert.Equal(t, 1, *upd.MyIndex)
}
