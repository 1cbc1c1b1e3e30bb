package ws

import (
	"chat-relay/errors"
	"chat-relay/runtime"
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server upgrades HTTP requests to WebSocket connections and bridges each
// one to the session coordinator.
type Server struct {
	log          *slog.Logger
	coordinator  *runtime.Coordinator
	upgrader     websocket.Upgrader
	bufferSize   int
	writeTimeout time.Duration
}

func NewServer(log *slog.Logger, coordinator *runtime.Coordinator, bufferSize int, writeTimeout time.Duration) *Server {
	return &Server{
		log:         log,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from arbitrary origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
	}
}

// client is one upgraded connection. The gorilla package allows a single
// concurrent writer, so every outbound frame goes through write().
type client struct {
	connectionID string
	conn         *websocket.Conn
	sink         *Sink
	writeTimeout time.Duration
	writeMu      sync.Mutex
}

func (c *client) write(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteJSON(v)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		connectionID: uuid.NewString(),
		conn:         conn,
		sink:         NewSink(s.bufferSize),
		writeTimeout: s.writeTimeout,
	}

	s.coordinator.OnConnect(c.connectionID)

	ctx, cancel := context.WithCancel(r.Context())
	go s.writePump(ctx, c)

	s.readLoop(c)

	// The read loop owns the connection teardown: once it returns the
	// client is gone, whatever the reason.
	cancel()
	s.coordinator.OnDisconnect(c.connectionID)
	if err := conn.Close(); err != nil {
		s.log.Debug("close failed", slog.String("connection_id", c.connectionID))
	}
}

// writePump drains the sink buffer onto the wire. Events already carry the
// order decided by the relay, so it only serializes and sends. A closed
// sink means the hub evicted this connection; the socket is closed so the
// read loop runs the regular disconnect path.
func (s *Server) writePump(ctx context.Context, c *client) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.sink.Done():
			s.log.Warn("subscriber evicted, closing connection",
				slog.String("connection_id", c.connectionID))
			_ = c.conn.Close()
			return
		case e := <-c.sink.Events:
			if err := c.write(toEventFrame(e)); err != nil {
				s.log.Debug("write failed, dropping connection",
					slog.String("connection_id", c.connectionID),
					slog.String("error", err.Error()))
				// Unblocks the read loop, which then runs the disconnect path.
				_ = c.conn.Close()
				return
			}
		}
	}
}

func (s *Server) readLoop(c *client) {
	for {
		var frame InboundFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("unexpected close",
					slog.String("connection_id", c.connectionID),
					slog.String("error", err.Error()))
			}
			return
		}

		switch frame.Type {
		case frameTypeIdentify:
			if err := s.coordinator.OnIdentify(c.connectionID, frame.Sender, c.sink); err != nil {
				// A blank name or a second identify on a live connection is
				// a protocol violation: report it to the offender and hang up.
				_ = c.write(newErrorFrame(err))
				return
			}
		case frameTypeChat:
			if err := s.coordinator.OnMessage(c.connectionID, frame.Content); err != nil {
				// A shed message is reported but the connection survives;
				// an unidentified sender is reported and hung up on.
				_ = c.write(newErrorFrame(err))
				if stderrors.Is(err, errors.ErrRelayBackpressure) {
					continue
				}
				return
			}
		default:
			s.log.Debug("unknown frame type",
				slog.String("connection_id", c.connectionID),
				slog.String("type", frame.Type))
		}
	}
}
