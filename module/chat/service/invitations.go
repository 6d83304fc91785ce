package service

import (
	"context"

	"linguachat/module/chat/model"
	"linguachat/service/bus"
	"linguachat/tools/errs"
)

// SendChatInvitation mirrors the friend-request shape with the chat id in the
// dedup key: mailbox entry on the receiver, outgoing mirror on the sender,
// new-notif on the receiver's personal channel.
func (e *Engine) SendChatInvitation(ctx context.Context, senderID, receiverID, chatID string) error {
	if senderID == "" || receiverID == "" || chatID == "" || senderID == receiverID {
		return errs.ErrArgs.WrapMsg("chat invitation", "sender", senderID, "receiver", receiverID, "chat", chatID)
	}
	sender, err := e.store.GetUser(ctx, senderID)
	if err != nil {
		return err
	}
	if _, err := e.store.GetUser(ctx, receiverID); err != nil {
		return err
	}
	chat, err := e.store.GetChat(ctx, chatID)
	if err != nil {
		return err
	}
	if chat.HasMember(receiverID) {
		return errs.ErrAlreadyMember
	}

	key := model.RequestKey{Type: model.RequestChat, UserID: senderID, ChatID: chatID}
	if pending, err := e.store.HasNotification(ctx, receiverID, key); err != nil {
		return err
	} else if pending {
		return nil
	}
	mirror := model.RequestKey{Type: model.RequestChat, UserID: receiverID, ChatID: chatID}
	if pending, err := e.store.HasOutgoing(ctx, senderID, mirror); err != nil {
		return err
	} else if pending {
		return nil
	}

	notif := model.Notification{
		Type:           model.RequestChat,
		SenderID:       senderID,
		SenderUsername: sender.Username,
		ChatID:         chatID,
		Chatname:       chat.Chatname,
	}
	if err := e.store.PushNotification(ctx, receiverID, notif); err != nil {
		return err
	}
	if err := e.store.PushOutgoing(ctx, senderID, model.OutgoingRequest{
		Type:       model.RequestChat,
		ReceiverID: receiverID,
		ChatID:     chatID,
	}); err != nil {
		return err
	}

	e.publish(ctx, bus.UserChannel(receiverID), bus.EvtNewNotif, notif)
	return nil
}

// AcceptChatInvitation removes the invitation (and the inviter's outgoing
// mirror), then joins the user exactly like a direct join, including the
// new-member room broadcast, so already-open viewers see the member arrive.
func (e *Engine) AcceptChatInvitation(ctx context.Context, chatID, userID string) error {
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	chat, err := e.store.GetChat(ctx, chatID)
	if err != nil {
		return err
	}

	// The invite may have come from any member; resolve the sender(s) from
	// the mailbox before pulling so the mirrors can be cleaned too.
	for _, n := range user.Mailbox {
		if n.Type == model.RequestChat && n.ChatID == chatID {
			if err := e.store.PullOutgoing(ctx, n.SenderID, model.RequestKey{
				Type: model.RequestChat, UserID: userID, ChatID: chatID,
			}); err != nil {
				return err
			}
		}
	}
	if err := e.store.PullNotification(ctx, userID, model.RequestKey{
		Type: model.RequestChat, ChatID: chatID,
	}); err != nil {
		return err
	}

	if chat.HasMember(userID) {
		return errs.ErrAlreadyMember
	}
	return e.admitMember(ctx, chat, user)
}
