package service

import (
	"context"

	"linguachat/module/chat/model"
	"linguachat/service/bus"
	"linguachat/tools/errs"
	"linguachat/tools/ids"
)

// CreateChat mints a named chat with the owner as sole member. A non-empty
// password makes it private and unlisted.
func (e *Engine) CreateChat(ctx context.Context, ownerID, chatname, password string) (*model.Chat, error) {
	if chatname == "" {
		return nil, errs.ErrArgs.WrapMsg("chatname required")
	}
	owner, err := e.store.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if taken, err := e.store.ChatnameTaken(ctx, chatname); err != nil {
		return nil, err
	} else if taken {
		return nil, errs.ErrChatnameTaken
	}

	chat := &model.Chat{
		ID:        ids.GenerateString(),
		Chatname:  chatname,
		Members:   []model.Member{{ID: ownerID, Username: owner.Username}},
		Languages: model.UnionLanguages(owner.Language),
		Messages:  []model.ChatMessage{},
		Password:  password,
	}
	if err := e.store.InsertChat(ctx, chat); err != nil {
		return nil, err
	}
	if err := e.store.PrependChatEntry(ctx, ownerID, model.ChatEntry{
		ID: chat.ID, Chatname: chatname,
	}); err != nil {
		return nil, err
	}
	return chat, nil
}

// JoinChat adds the user to a chat resolved by id.
func (e *Engine) JoinChat(ctx context.Context, userID, chatID string) (*model.Chat, error) {
	chat, err := e.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return e.join(ctx, userID, chat)
}

// JoinChatByName resolves the chat by the (chatname, password) credential
// pair; a chat without a password is never matched by this path.
func (e *Engine) JoinChatByName(ctx context.Context, userID, chatname, password string) (*model.Chat, error) {
	chat, err := e.store.FindChatByCredentials(ctx, chatname, password)
	if err != nil {
		return nil, err
	}
	return e.join(ctx, userID, chat)
}

func (e *Engine) join(ctx context.Context, userID string, chat *model.Chat) (*model.Chat, error) {
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if chat.HasMember(userID) {
		return nil, errs.ErrAlreadyMember
	}
	if err := e.admitMember(ctx, chat, user); err != nil {
		return nil, err
	}
	return chat, nil
}

// admitMember is the single membership-add path shared by direct join and
// invitation acceptance: member appended, language set grown when new, chat
// entry prepended with zero unreads, new-member broadcast to the room.
func (e *Engine) admitMember(ctx context.Context, chat *model.Chat, user *model.User) error {
	member := model.Member{ID: user.ID, Username: user.Username}
	if err := e.store.AddMember(ctx, chat.ID, member); err != nil {
		return err
	}
	chat.Members = append(chat.Members, member)
	if err := e.addLanguage(ctx, chat, user.Language); err != nil {
		return err
	}
	if err := e.store.PrependChatEntry(ctx, user.ID, model.ChatEntry{
		ID: chat.ID, Chatname: chat.Chatname,
	}); err != nil {
		return err
	}

	e.publish(ctx, bus.ChatChannel(chat.ID), bus.EvtNewMember, bus.NewMember{
		MemberID:   user.ID,
		MemberName: user.Username,
		MemberLan:  user.Language,
	})
	return nil
}

// LeaveChat removes the user from a named chat. When at most one member would
// remain the chat is deleted outright, and every remaining member's chat list
// entry is pulled with it so the views converge.
func (e *Engine) LeaveChat(ctx context.Context, userID, chatID string) error {
	if _, err := e.store.GetUser(ctx, userID); err != nil {
		return err
	}
	chat, err := e.store.GetChat(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.HasMember(userID) {
		return errs.ErrNotFound.WrapMsg("membership", "chat", chatID, "user", userID)
	}
	if chat.IsFriendChat {
		return errs.ErrArgs.WrapMsg("friend chats are dissolved by unfriending", "chat", chatID)
	}

	if err := e.store.PullChatEntry(ctx, userID, chatID); err != nil {
		return err
	}

	if len(chat.Members) <= 2 {
		for _, m := range chat.Members {
			if m.ID == userID {
				continue
			}
			if err := e.store.PullChatEntry(ctx, m.ID, chatID); err != nil {
				return err
			}
		}
		return e.store.DeleteChat(ctx, chatID)
	}

	remaining := make([]model.Member, 0, len(chat.Members)-1)
	for _, m := range chat.Members {
		if m.ID != userID {
			remaining = append(remaining, m)
		}
	}
	if err := e.store.RemoveMember(ctx, chatID, userID); err != nil {
		return err
	}
	// The leaver's language goes unless another member still speaks it.
	if _, err := e.recomputeLanguages(ctx, chatID, remaining); err != nil {
		return err
	}

	e.publish(ctx, bus.ChatChannel(chatID), bus.EvtLeftChat, bus.LeftChat{MemberID: userID})
	return nil
}

// SearchChats lists public, passwordless, non-friend chats by chatname
// prefix.
func (e *Engine) SearchChats(ctx context.Context, prefix string, limit int) ([]*model.Chat, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return e.store.SearchPublicChats(ctx, prefix, limit)
}
