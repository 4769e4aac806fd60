package events

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umar/usergroups/internal/auth"
	"github.com/umar/usergroups/internal/models"
)

type testEnv struct {
	hub    *Hub
	issuer *auth.Issuer
	server *httptest.Server
}

func newTestEnv(t *testing.T, relay Relay) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(relay)
	go hub.Run(ctx)

	issuer := auth.NewIssuer("secret", time.Hour, auth.NewMemorySessions())
	server := httptest.NewServer(ServeWS(hub, issuer))
	t.Cleanup(server.Close)
	return &testEnv{hub: hub, issuer: issuer, server: server}
}

func (e *testEnv) dial(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	token, err := e.issuer.Issue(context.Background(), &models.User{ID: userID, Username: userID})
	require.NoError(t, err)

	before := e.hub.ClientCount()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "?token=" + token.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return e.hub.ClientCount() == before+1 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_BroadcastAndTarget(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.dial(t, "alice")
	bob := env.dial(t, "bob")
	ctx := context.Background()

	require.NoError(t, env.hub.Publish(ctx, "alice", TypeUserUpdated, map[string]string{"id": "alice"}))
	require.NoError(t, env.hub.Publish(ctx, "", TypeGroupCreated, map[string]string{"name": "chess"}))

	msg := readMessage(t, alice)
	assert.Equal(t, TypeUserUpdated, msg.Type)
	assert.JSONEq(t, `{"id":"alice"}`, string(msg.Payload))

	assert.Equal(t, TypeGroupCreated, readMessage(t, alice).Type)
	// bob never sees alice's targeted event
	assert.Equal(t, TypeGroupCreated, readMessage(t, bob).Type)
}

func TestHub_PingPong(t *testing.T) {
	env := newTestEnv(t, nil)
	conn := env.dial(t, "alice")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, TypePong, readMessage(t, conn).Type)
}

func TestHub_PongReachesOnlyPingingConnection(t *testing.T) {
	env := newTestEnv(t, nil)
	first := env.dial(t, "alice")
	second := env.dial(t, "alice")

	require.NoError(t, first.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, TypePong, readMessage(t, first).Type)

	require.NoError(t, env.hub.Publish(context.Background(), "alice", TypeUserUpdated, nil))
	assert.Equal(t, TypeUserUpdated, readMessage(t, first).Type)
	assert.Equal(t, TypeUserUpdated, readMessage(t, second).Type)
}

func TestHub_ReplyAfterShutdownDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		hub.reply(&Client{send: make(chan []byte)}, []byte(`{"type":"pong"}`))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reply blocked on a stopped hub")
	}
}

func TestServeWS_RejectsMissingToken(t *testing.T) {
	env := newTestEnv(t, nil)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=bogus", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

// loopRelay hands published payloads straight back to its subscriber.
type loopRelay struct {
	mu        sync.Mutex
	published int
	handler   chan func([]byte)
}

func (r *loopRelay) Publish(_ context.Context, data []byte) error {
	r.mu.Lock()
	r.published++
	r.mu.Unlock()
	h := <-r.handler
	h(data)
	r.handler <- h
	return nil
}

func (r *loopRelay) Subscribe(ctx context.Context, handler func([]byte)) error {
	r.handler <- handler
	<-ctx.Done()
	return nil
}

func TestHub_PublishesThroughRelay(t *testing.T) {
	relay := &loopRelay{handler: make(chan func([]byte), 1)}
	env := newTestEnv(t, relay)
	conn := env.dial(t, "alice")

	require.NoError(t, env.hub.Publish(context.Background(), "", TypeUserCreated, nil))
	assert.Equal(t, TypeUserCreated, readMessage(t, conn).Type)

	relay.mu.Lock()
	defer relay.mu.Unlock()
	assert.Equal(t, 1, relay.published)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	issuer := auth.NewIssuer("secret", time.Hour, auth.NewMemorySessions())
	server := httptest.NewServer(ServeWS(hub, issuer))
	defer server.Close()

	token, err := issuer.Issue(context.Background(), &models.User{ID: "alice"})
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"?token="+token.Token, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount())
}
