package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	loomerrors "github.com/loomui-dev/loom/internal/errors"
	"github.com/loomui-dev/loom/pkg/protocol"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

// conn wraps one websocket connection driving one session. Writes are
// serialized through writeMu because gorilla permits a single writer.
type conn struct {
	ws      *websocket.Conn
	session *Session
	logger  *slog.Logger

	writeMu sync.Mutex
}

func newConn(ws *websocket.Conn, session *Session, logger *slog.Logger) *conn {
	c := &conn{ws: ws, session: session, logger: logger}
	session.setSink(c.write)
	return c
}

func (c *conn) write(msg []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.BinaryMessage, msg)
}

// readLoop reads frames until the connection closes or errors. It blocks;
// run it on the connection's goroutine.
func (c *conn) readLoop(ctx context.Context) {
	defer func() {
		c.session.Close()
		c.ws.Close()
	}()

	for {
		c.ws.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			c.logger.Error("frame decode error", "error", err)
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			c.handleEvent(ctx, frame.Payload)
		case protocol.FrameControl:
			c.handleControl(frame.Payload)
		default:
			c.logger.Warn("unexpected frame type", "type", frame.Type)
		}
	}
}

func (c *conn) handleEvent(ctx context.Context, payload []byte) {
	evt, err := protocol.DecodeEvent(payload)
	if err != nil {
		perr := loomerrors.Wrap("L301", loomerrors.CategoryProtocol, "invalid event payload", err)
		c.logger.Error("event decode error", "error", perr)
		c.sendError(perr.Code, perr.Message)
		return
	}
	c.session.Dispatch(ctx, evt)
}

func (c *conn) handleControl(payload []byte) {
	ctl, err := protocol.DecodeControl(payload)
	if err != nil {
		c.logger.Error("control decode error", "error", err)
		return
	}

	switch ctl.Kind {
	case "ping":
		msg, err := protocol.EncodeControl(protocol.Control{Kind: "pong"})
		if err != nil {
			return
		}
		if err := c.write(msg); err != nil {
			c.logger.Error("pong write failed", "error", err)
		}
	case "pong":
		c.logger.Debug("received pong")
	case "resync":
		// No patch history is kept; a resync replays the full document.
		c.session.bootstrap()
	default:
		c.logger.Warn("unknown control kind", "kind", ctl.Kind)
	}
}

func (c *conn) sendError(code, message string) {
	msg, err := protocol.EncodeError(protocol.ErrorReport{Code: code, Message: message})
	if err != nil {
		return
	}
	if err := c.write(msg); err != nil {
		c.logger.Error("error frame write failed", "error", err)
	}
}
