package websocket

import (
	"context"
	"encoding/json"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/service"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ChatHandler serves the chat websocket. Every frame is an Event envelope;
// a "send_message" event runs the same pipeline as the REST endpoint and
// the reply comes back through the hub, so every open device sees it.
type ChatHandler struct {
	hub         *Hub
	chatService service.IChatService
	logger      logger.ILogger
}

func NewChatHandler(hub *Hub, chatService service.IChatService, log logger.ILogger) *ChatHandler {
	return &ChatHandler{
		hub:         hub,
		chatService: chatService,
		logger:      log,
	}
}

// ServeWs handles a websocket connection. The token comes as a query param
// because browsers cannot set an Authorization header on the upgrade request.
func (h *ChatHandler) ServeWs(c *websocket.Conn) {
	token := c.Query("token")
	userIdStr, err := serverutils.VerifyToken(token)
	if err != nil {
		c.WriteJSON(Event{Type: "error", Data: json.RawMessage(`{"message":"Unauthorized"}`)})
		c.Close()
		return
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		c.Close()
		return
	}

	client := &Client{Hub: h.hub, Conn: c, UserID: userId, Send: make(chan []byte, 256)}
	client.OnMessage = func(data []byte) {
		h.handleEvent(userId, data)
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}

func (h *ChatHandler) handleEvent(userId uuid.UUID, data []byte) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		h.sendError(userId, "invalid event")
		return
	}

	switch event.Type {
	case "send_message":
		var req dto.SendMessageRequest
		if err := json.Unmarshal(event.Data, &req); err != nil {
			h.sendError(userId, "invalid send_message payload")
			return
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			h.sendError(userId, err.Error())
			return
		}

		h.hub.SendToUser(userId, "typing", map[string]interface{}{
			"session_id": req.SessionId,
		})

		// The pipeline runs on a background context: a dropped connection
		// must not abort the exchange or its memory maintenance.
		res, err := h.chatService.SendMessage(context.Background(), userId, &req)
		if err != nil {
			h.logger.Warn("ChatHandler", "send_message failed", map[string]interface{}{
				"user_id": userId,
				"error":   err.Error(),
			})
			h.sendError(userId, err.Error())
			return
		}

		h.hub.SendToUser(userId, "reply", res)

	default:
		h.sendError(userId, "unknown event type: "+event.Type)
	}
}

func (h *ChatHandler) sendError(userId uuid.UUID, message string) {
	h.hub.SendToUser(userId, "error", map[string]interface{}{"message": message})
}
