package server

import (
	"time"

	"github.com/existflow/neocount/internal/countdown"
	"github.com/existflow/neocount/internal/logger"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const writeWait = 10 * time.Second

// countdownFrame is one event's remaining time at one tick
type countdownFrame struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	TimeLeft countdown.TimeLeft `json:"time_left"`
}

// handleCountdownStream pushes a frame per event per tick until the client
// goes away. Every timer is released when the connection closes.
func (s *Server) handleCountdownStream(c echo.Context) error {
	events, err := storeOf(c).List(c.Request().Context())
	if err != nil {
		return s.fail(c, "stream countdowns", err)
	}

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", logger.F("error", err.Error()))
		return nil
	}
	defer ws.Close()

	frames := make(chan countdownFrame, 4*len(events)+1)
	subs := make([]*countdown.Subscription, 0, len(events))
	defer func() {
		for _, sub := range subs {
			sub.Release()
		}
	}()

	for _, e := range events {
		id, name := e.ID, e.Name
		subs = append(subs, s.hub.Subscribe(e.TargetDate, func(t countdown.TimeLeft) {
			select {
			case frames <- countdownFrame{ID: id, Name: name, TimeLeft: t}:
			default:
				// slow reader, drop this tick
			}
		}))
	}

	// The read loop only notices the client closing
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	logger.Info("Countdown stream opened", logger.F("events", len(events)))
	for {
		select {
		case f := <-frames:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(f); err != nil {
				logger.Debug("Countdown stream write failed", logger.F("error", err.Error()))
				return nil
			}
		case <-closed:
			logger.Info("Countdown stream closed")
			return nil
		case <-c.Request().Context().Done():
			_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}
	}
}
