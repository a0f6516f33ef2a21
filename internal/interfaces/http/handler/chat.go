package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tradepost/backend/internal/interfaces/chat"
)

// Event kinds accepted by the chat adapters
const (
	ChatKindCommand  = "command"
	ChatKindText     = "text"
	ChatKindCallback = "callback"
)

// ChatDispatcher answers one inbound chat event
type ChatDispatcher interface {
	Dispatch(ctx context.Context, in chat.Inbound) chat.Reply
}

// ChatSender identifies the user behind an event
type ChatSender struct {
	ExternalID string `json:"external_id" binding:"required,max=64" example:"100200300"`
	Handle     string `json:"handle" binding:"omitempty,max=64" example:"alice"`
}

// ChatFrame is one event in wire form. Which fields apply depends on Kind:
// command uses name and args, text uses body, callback uses token.
type ChatFrame struct {
	Kind  string   `json:"kind" binding:"required,oneof=command text callback" example:"command"`
	Name  string   `json:"name,omitempty" example:"start"`
	Args  []string `json:"args,omitempty"`
	Body  string   `json:"body,omitempty"`
	Token string   `json:"token,omitempty" example:"browse_categories"`
}

// event converts the frame into a chat event. ok is false for unknown kinds.
func (f ChatFrame) event() (ev chat.Event, ok bool) {
	switch f.Kind {
	case ChatKindCommand:
		return chat.Command{Name: strings.TrimPrefix(f.Name, "/"), Args: f.Args}, true
	case ChatKindText:
		return chat.Text{Body: f.Body}, true
	case ChatKindCallback:
		return chat.Callback{Token: f.Token}, true
	}
	return nil, false
}

// ChatEventRequest is a webhook delivery of one chat event
type ChatEventRequest struct {
	Sender ChatSender `json:"sender"`
	ChatFrame
}

// ChatHandler is the webhook transport for the chat dispatcher
type ChatHandler struct {
	BaseHandler
	dispatcher ChatDispatcher
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(dispatcher ChatDispatcher) *ChatHandler {
	return &ChatHandler{dispatcher: dispatcher}
}

// Event godoc
// @ID           postChatEvent
// @Summary      Deliver a chat event
// @Description  Runs one command, text or button press through the conversation flows and returns the reply to show the user
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request body ChatEventRequest true "Chat event"
// @Success      200 {object} APIResponse[chat.Reply]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     WebhookToken
// @Router       /chat/events [post]
func (h *ChatHandler) Event(c *gin.Context) {
	var req ChatEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	ev, ok := req.event()
	if !ok {
		h.BadRequest(c, "Unknown event kind")
		return
	}

	reply := h.dispatcher.Dispatch(c.Request.Context(), chat.Inbound{
		Sender: chat.Sender{ExternalID: req.Sender.ExternalID, Handle: req.Sender.Handle},
		Event:  ev,
	})
	h.Success(c, reply)
}
