// Package bridge connects the diagram to a remote host application over a
// websocket. Requests and signals go out as JSON messages; snapshot replies and
// host notifications come back on the same connection.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"flowview/internal/domain"
	"flowview/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

var (
	// ErrClosed is returned for requests made after the connection went away
	ErrClosed = errors.New("bridge closed")
	// ErrBusy is returned when the outbound queue is full
	ErrBusy = errors.New("bridge send queue full")
)

// Outbound message types
const (
	TypeGetJSON            = "get_json"
	TypeReady              = "ready"
	TypeReloaded           = "reloaded"
	TypeSelectionChanged   = "selection_changed"
	TypeEditEvent          = "edit_event"
	TypeEditSwitchBranches = "edit_switch_branches"
	TypeEditForkBranches   = "edit_fork_branches"
	TypeAddEntryPoint      = "add_entry_point"
	TypeAddEventAbove      = "add_event_above"
	TypeAddEventBelow      = "add_event_below"
	TypeUnlink             = "unlink"
	TypeLink               = "link"
	TypeRemoveEvent        = "remove_event"
	TypeRemoveEntryPoint   = "remove_entry_point"
)

// Inbound message types
const (
	TypeReply             = "reply"
	TypeDataChanged       = "data_changed"
	TypeFileLoaded        = "file_loaded"
	TypeSelect            = "select"
	TypeShowEventNames    = "show_event_names"
	TypeShowEventParams   = "show_event_params"
	TypeActionsProhibited = "actions_prohibited"
)

// Message is the envelope for every frame in both directions
type Message struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// EventPayload addresses one event, optionally with the parents a command
// applies to
type EventPayload struct {
	ID      int   `json:"id"`
	Parents []int `json:"parents,omitempty"`
}

// TogglePayload carries a boolean notification
type TogglePayload struct {
	Value bool `json:"value"`
}

// Bridge implements service.Host over a websocket connection
type Bridge struct {
	conn *websocket.Conn
	send chan Message

	mu      sync.Mutex
	pending map[string]func(domain.Snapshot, error)

	closed    chan struct{}
	closeOnce sync.Once
}

// Dial connects to a host listening at url
func Dial(ctx context.Context, url string, header http.Header) (*Bridge, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial host %s: %w", url, err)
	}
	return New(conn), nil
}

// New wraps an established connection
func New(conn *websocket.Conn) *Bridge {
	return &Bridge{
		conn:    conn,
		send:    make(chan Message, sendBuffer),
		pending: make(map[string]func(domain.Snapshot, error)),
		closed:  make(chan struct{}),
	}
}

// Run pumps messages until the connection drops or ctx is cancelled. Host
// notifications are delivered to n. Outstanding snapshot requests fail with
// ErrClosed when Run returns.
func (b *Bridge) Run(ctx context.Context, n service.Notifications) error {
	errc := make(chan error, 2)
	go func() { errc <- b.writePump(ctx) }()
	go func() { errc <- b.readPump(n) }()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		err = ctx.Err()
	}
	b.Close()
	b.failPending()
	return err
}

// Close shuts the connection down
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		close(b.closed)
		b.conn.Close()
	})
}

func (b *Bridge) failPending() {
	b.mu.Lock()
	pending := b.pending
	b.pending = make(map[string]func(domain.Snapshot, error))
	b.mu.Unlock()

	for _, reply := range pending {
		reply(nil, ErrClosed)
	}
}

func (b *Bridge) writePump(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-b.send:
			b.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := b.conn.WriteJSON(msg); err != nil {
				return fmt.Errorf("write %s: %w", msg.Type, err)
			}

		case <-ticker.C:
			if err := b.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}

		case <-ctx.Done():
			b.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return ctx.Err()

		case <-b.closed:
			return nil
		}
	}
}

func (b *Bridge) readPump(n service.Notifications) error {
	b.conn.SetReadDeadline(time.Now().Add(pongWait))
	b.conn.SetPongHandler(func(string) error {
		return b.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := b.conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			select {
			case <-b.closed:
				return nil
			default:
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Host bridge read error: %v", err)
			}
			return err
		}
		b.conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := b.handle(msg, n); err != nil {
			log.Printf("Host bridge: %s: %v", msg.Type, err)
		}
	}
}

func (b *Bridge) handle(msg Message, n service.Notifications) error {
	switch msg.Type {
	case TypeReply:
		return b.reply(msg)
	case TypeDataChanged:
		n.DataChanged()
	case TypeFileLoaded:
		n.FileLoaded()
	case TypeSelect:
		var p EventPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		n.SelectRequested(p.ID)
	case TypeShowEventNames, TypeShowEventParams, TypeActionsProhibited:
		var p TogglePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		switch msg.Type {
		case TypeShowEventNames:
			n.SetEventNamesVisible(p.Value)
		case TypeShowEventParams:
			n.SetEventParamsVisible(p.Value)
		default:
			n.SetActionsProhibited(p.Value)
		}
	default:
		return fmt.Errorf("unknown message type")
	}
	return nil
}

func (b *Bridge) reply(msg Message) error {
	b.mu.Lock()
	reply, ok := b.pending[msg.ID]
	delete(b.pending, msg.ID)
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("no pending request %q", msg.ID)
	}

	if msg.Error != "" {
		reply(nil, fmt.Errorf("host: %s", msg.Error))
		return nil
	}
	var snap domain.Snapshot
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &snap); err != nil {
			reply(nil, fmt.Errorf("decode snapshot: %w", err))
			return nil
		}
	}
	reply(snap, nil)
	return nil
}

func (b *Bridge) enqueue(msg Message) error {
	select {
	case <-b.closed:
		return ErrClosed
	default:
	}
	select {
	case b.send <- msg:
		return nil
	default:
		return ErrBusy
	}
}

func (b *Bridge) signal(typ string, payload interface{}) {
	if err := b.command(typ, payload); err != nil {
		log.Printf("Host bridge: dropping %s: %v", typ, err)
	}
}

func (b *Bridge) command(typ string, payload interface{}) error {
	msg := Message{Type: typ}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		msg.Payload = data
	}
	return b.enqueue(msg)
}

// RequestSnapshot implements service.Host. The reply runs on the bridge's read
// goroutine, or immediately when the request cannot be sent.
func (b *Bridge) RequestSnapshot(reply func(domain.Snapshot, error)) {
	id := uuid.NewString()
	b.mu.Lock()
	b.pending[id] = reply
	b.mu.Unlock()

	if err := b.enqueue(Message{Type: TypeGetJSON, ID: id}); err != nil {
		b.mu.Lock()
		_, still := b.pending[id]
		delete(b.pending, id)
		b.mu.Unlock()
		if still {
			reply(nil, err)
		}
	}
}

// Ready implements service.Host
func (b *Bridge) Ready() { b.signal(TypeReady, nil) }

// Reloaded implements service.Host
func (b *Bridge) Reloaded() { b.signal(TypeReloaded, nil) }

// SelectionChanged implements service.Host
func (b *Bridge) SelectionChanged(id int) { b.signal(TypeSelectionChanged, EventPayload{ID: id}) }

// EditEvent implements service.Host
func (b *Bridge) EditEvent(id int) error { return b.command(TypeEditEvent, EventPayload{ID: id}) }

// EditSwitchBranches implements service.Host
func (b *Bridge) EditSwitchBranches(id int) error {
	return b.command(TypeEditSwitchBranches, EventPayload{ID: id})
}

// EditForkBranches implements service.Host
func (b *Bridge) EditForkBranches(id int) error {
	return b.command(TypeEditForkBranches, EventPayload{ID: id})
}

// AddEntryPoint implements service.Host
func (b *Bridge) AddEntryPoint(id int) error {
	return b.command(TypeAddEntryPoint, EventPayload{ID: id})
}

// AddEventAbove implements service.Host
func (b *Bridge) AddEventAbove(parents []int, id int) error {
	return b.command(TypeAddEventAbove, EventPayload{ID: id, Parents: parents})
}

// AddEventBelow implements service.Host
func (b *Bridge) AddEventBelow(id int) error {
	return b.command(TypeAddEventBelow, EventPayload{ID: id})
}

// Unlink implements service.Host
func (b *Bridge) Unlink(id int) error { return b.command(TypeUnlink, EventPayload{ID: id}) }

// Link implements service.Host
func (b *Bridge) Link(id int) error { return b.command(TypeLink, EventPayload{ID: id}) }

// RemoveEvent implements service.Host
func (b *Bridge) RemoveEvent(parents []int, id int) error {
	return b.command(TypeRemoveEvent, EventPayload{ID: id, Parents: parents})
}

// RemoveEntryPoint implements service.Host
func (b *Bridge) RemoveEntryPoint(id int) error {
	return b.command(TypeRemoveEntryPoint, EventPayload{ID: id})
}

var _ service.Host = (*Bridge)(nil)
