package service

import (
	"sync"

	"go.uber.org/zap"
)

// Display message types. Only MsgGameComplete and MsgPing originate from a
// display; everything else flows outward.
const (
	MsgConnected        = "connected"
	MsgSessionReady     = "session_ready"
	MsgGameStart        = "game_start"
	MsgGameComplete     = "game_complete"
	MsgBackgroundUpdate = "background_update"
	MsgPing             = "ping"
	MsgPong             = "pong"
)

type OutcomePayload struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	IsNegative bool   `json:"is_negative"`
}

type DisplayMessage struct {
	Type             string          `json:"type"`
	DisplayID        string          `json:"display_id,omitempty"`
	SessionID        string          `json:"session_id,omitempty"`
	PlayerName       string          `json:"player_name,omitempty"`
	Outcome          *OutcomePayload `json:"outcome,omitempty"`
	BackgroundConfig string          `json:"background_config,omitempty"`
}

// DisplayConn is one live connection to a display. *websocket.Conn satisfies
// it.
type DisplayConn interface {
	WriteJSON(v any) error
}

// Broadcaster is the per-display fan-out registry. Messages are never queued:
// a display that is offline at broadcast time misses the event and recovers
// through the session-status endpoint when it reconnects.
type Broadcaster struct {
	mu    sync.RWMutex
	conns map[string]map[DisplayConn]bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		conns: make(map[string]map[DisplayConn]bool),
	}
}

func (b *Broadcaster) Register(displayID string, conn DisplayConn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conns[displayID] == nil {
		b.conns[displayID] = make(map[DisplayConn]bool)
	}
	b.conns[displayID][conn] = true
}

func (b *Broadcaster) Unregister(displayID string, conn DisplayConn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if conns, ok := b.conns[displayID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(b.conns, displayID)
		}
	}
}

// Broadcast fans the message out to every live connection of the display and
// returns how many received it. Zero receivers is a logged no-op.
func (b *Broadcaster) Broadcast(displayID string, msg DisplayMessage) int {
	b.mu.RLock()
	targets := make([]DisplayConn, 0, len(b.conns[displayID]))
	for conn := range b.conns[displayID] {
		targets = append(targets, conn)
	}
	b.mu.RUnlock()

	if len(targets) == 0 {
		zap.L().Info("no live connections for display, dropping broadcast",
			zap.String("displayID", displayID),
			zap.String("type", msg.Type))
		return 0
	}

	delivered := 0
	for _, conn := range targets {
		if err := conn.WriteJSON(msg); err != nil {
			zap.L().Warn("failed to write to display connection",
				zap.String("displayID", displayID),
				zap.Error(err))
			continue
		}
		delivered++
	}

	return delivered
}

// ConnectionCount reports live connections for a display.
func (b *Broadcaster) ConnectionCount(displayID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.conns[displayID])
}
