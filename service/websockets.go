package service

import (
	"context"
	"net/http"

	"github.com/Comcast/shapes/util"

	"github.com/gorilla/websocket"
)

// WebSocketHandler serves operations over a WebSocket.
//
// Each text message is one Op, and each Op gets one Reply.  Replies
// are written in the order the ops arrive.
func (s *Service) WebSocketHandler(ctx context.Context) http.HandlerFunc {
	var upgrader = websocket.Upgrader{} // use default options

	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			util.Logger.Warn().Err(err).Msg("websocket upgrade")
			return
		}
		defer c.Close()

		id := c.RemoteAddr().String()
		log := util.Logger.With().Str("ws", id).Logger()
		log.Debug().Msg("websocket open")

		// Unblock ReadMessage when the service is done.
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				c.Close()
			case <-done:
			}
		}()

		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Msg("websocket read")
				}
				break
			}

			var rep *Reply
			if op, err := ParseOp(message); err != nil {
				rep = &Reply{Error: "can't parse: " + err.Error()}
			} else {
				rep = s.Do(ctx, op)
			}

			if err = c.WriteJSON(rep); err != nil {
				log.Warn().Err(err).Msg("websocket write")
				break
			}
		}

		log.Debug().Msg("websocket closed")
	}
}
