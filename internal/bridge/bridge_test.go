package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowview/internal/domain"
)

// fakeHost accepts one bridge connection and exposes it to the test
type fakeHost struct {
	conns chan *websocket.Conn
}

func (h *fakeHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.conns <- conn
}

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.calls = append(r.calls, s)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) DataChanged()                 { r.add("data_changed") }
func (r *recorder) FileLoaded()                  { r.add("file_loaded") }
func (r *recorder) SelectRequested(id int)       { r.add("select " + itoa(id)) }
func (r *recorder) SetEventNamesVisible(v bool)  { r.add("names " + btoa(v)) }
func (r *recorder) SetEventParamsVisible(v bool) { r.add("params " + btoa(v)) }
func (r *recorder) SetActionsProhibited(v bool)  { r.add("prohibited " + btoa(v)) }

func itoa(i int) string {
	data, _ := json.Marshal(i)
	return string(data)
}

func btoa(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

type session struct {
	bridge *Bridge
	host   *websocket.Conn
	notes  *recorder
	cancel context.CancelFunc
	done   chan error
}

func connect(t *testing.T) *session {
	t.Helper()
	fh := &fakeHost{conns: make(chan *websocket.Conn, 1)}
	srv := httptest.NewServer(fh)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	b, err := Dial(context.Background(), url, nil)
	require.NoError(t, err)

	var conn *websocket.Conn
	select {
	case conn = <-fh.conns:
	case <-time.After(2 * time.Second):
		t.Fatal("host never saw the connection")
	}
	t.Cleanup(func() { conn.Close() })

	s := &session{bridge: b, host: conn, notes: &recorder{}, done: make(chan error, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	t.Cleanup(cancel)
	go func() { s.done <- b.Run(ctx, s.notes) }()
	return s
}

func (s *session) read(t *testing.T) Message {
	t.Helper()
	s.host.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, s.host.ReadJSON(&msg))
	return msg
}

func TestRequestSnapshot(t *testing.T) {
	s := connect(t)

	type result struct {
		snap domain.Snapshot
		err  error
	}
	got := make(chan result, 1)
	s.bridge.RequestSnapshot(func(snap domain.Snapshot, err error) { got <- result{snap, err} })

	req := s.read(t)
	assert.Equal(t, TypeGetJSON, req.Type)
	require.NotEmpty(t, req.ID)

	require.NoError(t, s.host.WriteJSON(map[string]any{
		"type": TypeReply,
		"id":   req.ID,
		"payload": []map[string]any{
			{"type": "node", "id": 0, "node_type": "join", "data": map[string]any{"name": "Event0"}},
		},
	}))

	select {
	case r := <-got:
		require.NoError(t, r.err)
		require.Len(t, r.snap.Nodes(), 1)
		assert.Equal(t, domain.KindJoin, r.snap.Nodes()[0].Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("reply never arrived")
	}
}

func TestRequestSnapshotHostError(t *testing.T) {
	s := connect(t)

	got := make(chan error, 1)
	s.bridge.RequestSnapshot(func(_ domain.Snapshot, err error) { got <- err })
	req := s.read(t)
	require.NoError(t, s.host.WriteJSON(Message{Type: TypeReply, ID: req.ID, Error: "no flowchart"}))

	select {
	case err := <-got:
		assert.ErrorContains(t, err, "no flowchart")
	case <-time.After(2 * time.Second):
		t.Fatal("reply never arrived")
	}
}

func TestCommands(t *testing.T) {
	s := connect(t)

	s.bridge.Ready()
	require.NoError(t, s.bridge.RemoveEvent([]int{0, 1}, 2))
	s.bridge.SelectionChanged(-1)

	assert.Equal(t, TypeReady, s.read(t).Type)

	rm := s.read(t)
	assert.Equal(t, TypeRemoveEvent, rm.Type)
	var p EventPayload
	require.NoError(t, json.Unmarshal(rm.Payload, &p))
	assert.Equal(t, EventPayload{ID: 2, Parents: []int{0, 1}}, p)

	sel := s.read(t)
	assert.Equal(t, TypeSelectionChanged, sel.Type)
	assert.JSONEq(t, `{"id": -1}`, string(sel.Payload))
}

func TestNotifications(t *testing.T) {
	s := connect(t)

	for _, m := range []string{
		`{"type": "data_changed"}`,
		`{"type": "select", "payload": {"id": 4}}`,
		`{"type": "show_event_names", "payload": {"value": true}}`,
		`{"type": "actions_prohibited", "payload": {"value": false}}`,
		`{"type": "bogus"}`,
		`{"type": "file_loaded"}`,
	} {
		require.NoError(t, s.host.WriteMessage(websocket.TextMessage, []byte(m)))
	}

	want := []string{"data_changed", "select 4", "names on", "prohibited off", "file_loaded"}
	require.Eventually(t, func() bool { return len(s.notes.snapshot()) == len(want) },
		2*time.Second, 10*time.Millisecond)
	assert.Equal(t, want, s.notes.snapshot())
}

func TestCloseFailsPending(t *testing.T) {
	s := connect(t)

	got := make(chan error, 1)
	s.bridge.RequestSnapshot(func(_ domain.Snapshot, err error) { got <- err })
	s.read(t)

	s.cancel()
	select {
	case err := <-got:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("pending request never failed")
	}

	select {
	case err := <-s.done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("bridge did not stop")
	}

	assert.ErrorIs(t, s.bridge.Link(3), ErrClosed)

	var late error
	s.bridge.RequestSnapshot(func(_ domain.Snapshot, err error) { late = err })
	assert.ErrorIs(t, late, ErrClosed)
}
