package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"linguachat/logger"
	midsec "linguachat/middleware/security"
	"linguachat/tools/decode"
	"linguachat/tools/ids"
	"linguachat/tools/safe"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// clientFrame is what connected clients send upstream. Everything the engine
// mutates goes through HTTP; the socket only manages subscription focus and
// heartbeats.
type clientFrame struct {
	Action string         `json:"action"` // open-chat | close-chat | ping
	Data   map[string]any `json:"data,omitempty"`
}

type openChatData struct {
	ChatID string `json:"chat_id"`
}

// ServeWs upgrades an authenticated request and runs the read loop until the
// peer goes away.
func (g *Gateway) ServeWs(c *gin.Context) {
	userID := midsec.UserID(c)
	if userID == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(ids.GenerateString(), userID, ws)
	if err := g.Register(c.Request.Context(), client); err != nil {
		logger.Error("ws register failed", zap.String("user", userID), zap.Error(err))
		_ = ws.Close()
		return
	}

	safe.Go(client.writePump)
	g.readPump(client)
}

// PresenceOf reports whether a user currently holds a live connection on any
// gateway node. The gateway id stays server-side.
func (g *Gateway) PresenceOf(c *gin.Context) {
	_, online, err := g.presence.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": online})
}

func (g *Gateway) readPump(c *Client) {
	defer func() {
		g.Unregister(context.Background(), c)
		_ = c.WS.Close()
	}()

	c.WS.SetReadLimit(maxFrameSize)
	_ = c.WS.SetReadDeadline(time.Now().Add(pongWait))
	c.WS.SetPongHandler(func(string) error {
		return c.WS.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame clientFrame
		if err := c.WS.ReadJSON(&frame); err != nil {
			return
		}
		_ = c.WS.SetReadDeadline(time.Now().Add(pongWait))

		switch frame.Action {
		case "open-chat":
			data, err := decode.Map[openChatData](frame.Data)
			if err != nil || data.ChatID == "" {
				continue
			}
			if err := g.OpenChat(c, data.ChatID); err != nil {
				logger.Warn("open-chat failed",
					zap.String("user", c.UserID),
					zap.String("chat", data.ChatID),
					zap.Error(err),
				)
			}
		case "close-chat":
			g.CloseChat(c)
		case "ping":
			g.Heartbeat(context.Background(), c)
		}
	}
}
