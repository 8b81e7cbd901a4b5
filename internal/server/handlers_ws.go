package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"slotcast/internal/models"
)

// Inbound event payloads. The realtime channel is an alternate control
// path: every event routes through the same services as the REST surface.
type slotUpdateEvent struct {
	Slot     string  `json:"slot"`
	ImageURL *string `json:"imageUrl"`
	ImageID  *string `json:"imageId"`
}

type slotClearEvent struct {
	Slot string `json:"slot"`
}

type sceneLoadEvent struct {
	SceneID int64 `json:"sceneId"`
}

type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkWSOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log().Debug("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	client := newWSClient(uuid.NewString(), conn)

	// Welcome the client with its identity and the full registry snapshot
	// so it can render without waiting for the next change event. Snapshot
	// and registration happen under the registry lock: every mutation is
	// either in the snapshot or delivered as an event after it, and the
	// welcome pair always precedes any broadcast.
	s.slots.Snapshot(func(slots map[string]models.Slot) {
		now := time.Now().UTC()
		s.hub.register(client,
			wsEnvelope{Event: EventConnectionStatus, Data: ConnectionStatusPayload{
				Status:    "connected",
				ClientID:  client.id,
				Timestamp: now,
			}},
			wsEnvelope{Event: EventSlotsState, Data: SlotsStatePayload{
				Slots:     slots,
				Timestamp: now,
			}},
		)
	})
	go client.writePump()

	s.log().Info("realtime client connected", "client_id", client.id, "remote_addr", r.RemoteAddr)

	s.readLoop(r, client)

	s.hub.unregister(client.id)
	s.log().Info("realtime client disconnected", "client_id", client.id)
}

func (s *Server) readLoop(r *http.Request, client *wsClient) {
	client.conn.SetReadLimit(maxInboundSize)
	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.replyError(client, fmt.Errorf("malformed message"), 0)
			continue
		}
		s.dispatch(r, client, msg)
	}
}

func (s *Server) dispatch(r *http.Request, client *wsClient, msg inboundMessage) {
	ctx := r.Context()

	switch msg.Event {
	case EventSlotUpdate:
		var ev slotUpdateEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			s.replyError(client, fmt.Errorf("malformed slot:update payload"), 0)
			return
		}
		if _, err := s.slots.Set(ctx, ev.Slot, ev.ImageID, ev.ImageURL); err != nil {
			s.replyServiceError(client, err, 0)
		}

	case EventSlotClear:
		var ev slotClearEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			s.replyError(client, fmt.Errorf("malformed slot:clear payload"), 0)
			return
		}
		if _, err := s.slots.Clear(ctx, ev.Slot); err != nil {
			s.replyServiceError(client, err, 0)
		}

	case EventSceneLoad:
		var ev sceneLoadEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			s.replyError(client, fmt.Errorf("malformed scene:load payload"), 0)
			return
		}
		if _, err := s.scenes.Load(ctx, ev.SceneID); err != nil {
			s.replyServiceError(client, err, ev.SceneID)
		}

	case EventPing:
		client.enqueue(wsEnvelope{Event: EventPong})

	default:
		s.replyError(client, fmt.Errorf("unknown event %q", msg.Event), 0)
	}
}

// replyServiceError sends an error event to the originating client only,
// hiding internal detail the same way the REST surface does.
func (s *Server) replyServiceError(client *wsClient, err error, sceneID int64) {
	status := httpStatusFromError(err)
	message := err.Error()
	if status >= 500 {
		s.log().Error("realtime event error", "client_id", client.id, "error", err)
		message = "internal error"
	} else {
		s.log().Debug("realtime event rejected", "client_id", client.id, "error", err)
	}
	client.enqueue(wsEnvelope{Event: EventError, Data: ErrorPayload{Message: message, SceneID: sceneID}})
}

func (s *Server) replyError(client *wsClient, err error, sceneID int64) {
	s.log().Debug("realtime event rejected", "client_id", client.id, "error", err)
	client.enqueue(wsEnvelope{Event: EventError, Data: ErrorPayload{Message: err.Error(), SceneID: sceneID}})
}

// checkWSOrigin mirrors the CORS policy. Requests without an Origin header
// (non-browser clients) are allowed.
func (s *Server) checkWSOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
