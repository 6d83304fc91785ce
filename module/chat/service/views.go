package service

import (
	"context"

	"linguachat/module/chat/model"
	"linguachat/tools/errs"
)

// ChatView is the per-viewer read model of a chat: the document plus the
// display name derived for this viewer when the chat is unnamed.
type ChatView struct {
	*model.Chat
	DisplayName string `json:"displayName"`
}

// GetUserData returns the user's full denormalized view: friends, ordered
// chat list with unread counters, mailbox. Mutates nothing.
func (e *Engine) GetUserData(ctx context.Context, userID string) (*model.User, error) {
	return e.store.GetUser(ctx, userID)
}

// GetChatData returns a chat for one viewer and zeroes that viewer's unread
// counter: viewing IS the read acknowledgement. Fetching is also the
// convergence backstop, so display data is derived here rather than trusted
// from caches.
func (e *Engine) GetChatData(ctx context.Context, chatID, viewerID string) (*ChatView, error) {
	chat, err := e.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(viewerID) {
		return nil, errs.ErrArgs.WrapMsg("viewer is not a member", "chat", chatID)
	}
	if err := e.store.SetUnreads(ctx, viewerID, chatID, 0); err != nil {
		return nil, err
	}
	return &ChatView{Chat: chat, DisplayName: chat.DisplayNameFor(viewerID)}, nil
}
