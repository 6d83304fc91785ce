package service

import (
	"context"

	"linguachat/module/chat/model"
	"linguachat/service/bus"
	"linguachat/tools/errs"
	"linguachat/tools/ids"
)

// SendFriendRequest pushes a mailbox entry on the receiver and its
// outgoing-request mirror on the sender, then signals the receiver's live
// session. A pending duplicate on either side makes this an idempotent no-op,
// not an error.
func (e *Engine) SendFriendRequest(ctx context.Context, senderID, receiverID string) error {
	if senderID == "" || receiverID == "" || senderID == receiverID {
		return errs.ErrArgs.WrapMsg("friend request", "sender", senderID, "receiver", receiverID)
	}
	sender, err := e.store.GetUser(ctx, senderID)
	if err != nil {
		return err
	}
	if _, err := e.store.GetUser(ctx, receiverID); err != nil {
		return err
	}

	key := model.RequestKey{Type: model.RequestFriend, UserID: senderID}
	if pending, err := e.store.HasNotification(ctx, receiverID, key); err != nil {
		return err
	} else if pending {
		return nil
	}
	mirror := model.RequestKey{Type: model.RequestFriend, UserID: receiverID}
	if pending, err := e.store.HasOutgoing(ctx, senderID, mirror); err != nil {
		return err
	} else if pending {
		return nil
	}

	notif := model.Notification{
		Type:           model.RequestFriend,
		SenderID:       senderID,
		SenderUsername: sender.Username,
	}
	if err := e.store.PushNotification(ctx, receiverID, notif); err != nil {
		return err
	}
	if err := e.store.PushOutgoing(ctx, senderID, model.OutgoingRequest{
		Type:       model.RequestFriend,
		ReceiverID: receiverID,
	}); err != nil {
		return err
	}

	e.publish(ctx, bus.UserChannel(receiverID), bus.EvtNewNotif, notif)
	return nil
}

// AcceptFriendRequest resolves the pending edge: mailbox entry and outgoing
// mirror go, both users gain a friend entry and a fresh friend chat at the
// front of their chat lists, and the chat document is created with the union
// of both languages. Returns the new chat id. Write order matters for
// convergence under partial failure: the accepting user first, then the
// sender, then the chat document.
func (e *Engine) AcceptFriendRequest(ctx context.Context, senderID, userID string) (string, error) {
	sender, err := e.store.GetUser(ctx, senderID)
	if err != nil {
		return "", err
	}
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}

	chatID := ids.GenerateString()

	key := model.RequestKey{Type: model.RequestFriend, UserID: senderID}
	if err := e.store.PullNotification(ctx, userID, key); err != nil {
		return "", err
	}
	if err := e.store.PullOutgoing(ctx, senderID, model.RequestKey{
		Type: model.RequestFriend, UserID: userID,
	}); err != nil {
		return "", err
	}

	if err := e.store.PushFriend(ctx, userID, model.FriendEntry{
		FriendID: senderID, FriendName: sender.Username, ChatID: chatID,
	}); err != nil {
		return "", err
	}
	if err := e.store.PrependChatEntry(ctx, userID, model.ChatEntry{ID: chatID}); err != nil {
		return "", err
	}

	if err := e.store.PushFriend(ctx, senderID, model.FriendEntry{
		FriendID: userID, FriendName: user.Username, ChatID: chatID,
	}); err != nil {
		return "", err
	}
	if err := e.store.PrependChatEntry(ctx, senderID, model.ChatEntry{ID: chatID}); err != nil {
		return "", err
	}

	chat := &model.Chat{
		ID: chatID,
		Members: []model.Member{
			{ID: senderID, Username: sender.Username},
			{ID: userID, Username: user.Username},
		},
		Languages:    model.UnionLanguages(sender.Language, user.Language),
		Messages:     []model.ChatMessage{},
		IsFriendChat: true,
	}
	if err := e.store.InsertChat(ctx, chat); err != nil {
		return "", err
	}

	e.publish(ctx, bus.UserChannel(senderID), bus.EvtAcceptedFriend, bus.AcceptedFriend{
		ChatID:     chatID,
		FriendID:   userID,
		FriendName: user.Username,
	})
	return chatID, nil
}

// DeclineRequest drops the pending edge from both endpoints: the mailbox
// entry on the decliner and the outgoing mirror on the sender, so the sender
// is free to try again.
func (e *Engine) DeclineRequest(ctx context.Context, senderID, userID, chatID string) error {
	if _, err := e.store.GetUser(ctx, senderID); err != nil {
		return err
	}
	if _, err := e.store.GetUser(ctx, userID); err != nil {
		return err
	}

	reqType := model.RequestFriend
	if chatID != "" {
		reqType = model.RequestChat
	}
	if err := e.store.PullNotification(ctx, userID, model.RequestKey{
		Type: reqType, UserID: senderID, ChatID: chatID,
	}); err != nil {
		return err
	}
	return e.store.PullOutgoing(ctx, senderID, model.RequestKey{
		Type: reqType, UserID: userID, ChatID: chatID,
	})
}

// Unfriend dissolves a friendship edge: reciprocal friend entries, both chat
// list entries and the friend chat itself. The chat id is taken from the
// caller and checked against the stored friend entry, never located by
// member-content search.
func (e *Engine) Unfriend(ctx context.Context, userID, friendID, chatID string) error {
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := e.store.GetUser(ctx, friendID); err != nil {
		return err
	}

	found := false
	for _, f := range user.FriendList {
		if f.FriendID == friendID {
			found = true
			if chatID == "" {
				chatID = f.ChatID
			} else if f.ChatID != "" && f.ChatID != chatID {
				return errs.ErrArgs.WrapMsg("chat id does not match friend entry", "chat", chatID)
			}
		}
	}
	if !found {
		return errs.ErrNotFound.WrapMsg("friend", "id", friendID)
	}

	if err := e.store.PullFriend(ctx, userID, friendID); err != nil {
		return err
	}
	if err := e.store.PullFriend(ctx, friendID, userID); err != nil {
		return err
	}
	if err := e.store.PullChatEntry(ctx, userID, chatID); err != nil {
		return err
	}
	if err := e.store.PullChatEntry(ctx, friendID, chatID); err != nil {
		return err
	}
	if err := e.store.DeleteChat(ctx, chatID); err != nil {
		return err
	}

	e.publish(ctx, bus.UserChannel(friendID), bus.EvtUnfriended, bus.Unfriended{
		FriendID: userID,
		ChatID:   chatID,
	})
	return nil
}
