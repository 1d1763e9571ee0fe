package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Sumatoshi-tech/sortviz/pkg/session"
	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

// client is one websocket connection and the session it drives. The read
// loop handles control messages; a sort runs on its own goroutine and
// streams events back while the loop keeps accepting stop and speed.
type client struct {
	conn      *websocket.Conn
	sess      *session.Session
	validator *controlValidator
	logger    *slog.Logger

	writeMu  sync.Mutex
	writeErr error

	runs      sync.WaitGroup
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, sess *session.Session, validator *controlValidator, logger *slog.Logger) *client {
	return &client{
		conn:      conn,
		sess:      sess,
		validator: validator,
		logger:    logger,
	}
}

func (c *client) serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	defer func() {
		cancel()
		c.sess.Stop()
		c.runs.Wait()
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageBytes)
	c.sendState()

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.DebugContext(ctx, "websocket read ended", "error", err)
			}

			return
		}

		if msgType != websocket.TextMessage {
			c.sendError(fmt.Errorf("%w: expected a text frame", ErrInvalidMessage))

			continue
		}

		msg, err := c.validator.Decode(data)
		if err != nil {
			c.sendError(err)

			continue
		}

		err = c.dispatch(ctx, msg)
		if err != nil {
			c.sendError(err)
		}
	}
}

func (c *client) dispatch(ctx context.Context, msg ControlMessage) error {
	switch msg.Action {
	case ActionGenerate:
		return c.generate(msg)
	case ActionStart:
		return c.start(ctx, msg)
	case ActionStop:
		c.sess.Stop()

		return nil
	case ActionSpeed:
		return c.sess.SetSpeed(*msg.Speed)
	case ActionAlgorithm:
		_, err := c.sess.SetAlgorithm(msg.Algorithm)

		return err
	case ActionState:
		c.sendState()

		return nil
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidMessage, msg.Action)
	}
}

func (c *client) generate(msg ControlMessage) error {
	var (
		values []int
		err    error
	)

	if msg.Size != nil {
		values, err = c.sess.SetSize(*msg.Size)
	} else {
		values, err = c.sess.Generate()
	}

	if err != nil {
		return err
	}

	c.send(ServerMessage{Type: TypeArray, Values: values})

	return nil
}

// start applies the optional algorithm and speed, then launches the run.
func (c *client) start(ctx context.Context, msg ControlMessage) error {
	if c.sess.Running() {
		return session.ErrRunning
	}

	if msg.Algorithm != "" {
		if _, err := c.sess.SetAlgorithm(msg.Algorithm); err != nil {
			return err
		}
	}

	if msg.Speed != nil {
		if err := c.sess.SetSpeed(*msg.Speed); err != nil {
			return err
		}
	}

	c.runs.Add(1)

	go func() {
		defer c.runs.Done()

		res, err := c.sess.Start(ctx, sorting.SinkFunc(c.sendEvent))
		if err != nil {
			c.sendError(err)

			return
		}

		stats := res.Stats.Snapshot(res.Finished)
		cancelled := res.Cancelled

		c.send(ServerMessage{Type: TypeDone, Values: res.Values, Stats: &stats, Cancelled: &cancelled})
	}()

	return nil
}

func (c *client) sendEvent(ev sorting.Event) {
	c.send(ServerMessage{Type: TypeEvent, Event: &ev})
}

func (c *client) sendState() {
	snap := c.sess.Snapshot()

	c.send(ServerMessage{Type: TypeState, State: &snap, Algorithms: algorithmInfos()})
}

func (c *client) sendError(err error) {
	c.send(ServerMessage{Type: TypeError, Message: err.Error()})
}

// send writes msg unless an earlier write failed. A failed write stops the
// session so the engine does not keep sorting for a dead peer.
func (c *client) send(msg ServerMessage) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeErr != nil {
		return
	}

	deadlineErr := c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	writeErr := c.conn.WriteJSON(msg)

	if err := errors.Join(deadlineErr, writeErr); err != nil {
		c.writeErr = err
		c.sess.Stop()
		c.logger.Debug("websocket write failed", "error", err)
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		c.sess.Stop()

		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()

		c.conn.Close()
	})
}
