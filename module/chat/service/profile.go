package service

import (
	"context"

	"linguachat/module/chat/model"
	"linguachat/service/bus"
	"linguachat/tools/errs"
)

// UpdateProfile applies a rename and/or a language change. The two
// sub-effects are independent: a rejected username never blocks a supplied
// language change. All caches holding the old username (chat member lists,
// friends' friend lists) are rewritten here and nowhere else.
func (e *Engine) UpdateProfile(ctx context.Context, userID, newUsername, newLanguage string) error {
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	var renameErr error
	if newUsername != "" && newUsername != user.Username {
		renameErr = e.rename(ctx, user, newUsername)
	}
	if newLanguage != "" && newLanguage != user.Language {
		if err := e.relanguage(ctx, user, newLanguage); err != nil {
			return err
		}
	}
	return renameErr
}

func (e *Engine) rename(ctx context.Context, user *model.User, newUsername string) error {
	if newUsername == model.DefaultUsername {
		return errs.ErrArgs.WrapMsg("reserved username")
	}
	if taken, err := e.store.UsernameTaken(ctx, newUsername, user.ID); err != nil {
		return err
	} else if taken {
		return errs.ErrUsernameTaken
	}

	if err := e.store.SetUsername(ctx, user.ID, newUsername); err != nil {
		return err
	}

	for _, entry := range user.Chats {
		if err := e.store.SetMemberName(ctx, entry.ID, user.ID, newUsername); err != nil {
			return err
		}
		e.publish(ctx, bus.ChatChannel(entry.ID), bus.EvtMemberDataUpdated, bus.MemberDataUpdated{
			MemberID:   user.ID,
			MemberName: newUsername,
		})
	}
	for _, f := range user.FriendList {
		if err := e.store.SetFriendName(ctx, f.FriendID, user.ID, newUsername); err != nil {
			return err
		}
		e.publish(ctx, bus.UserChannel(f.FriendID), bus.EvtFriendDataUpdated, bus.FriendDataUpdated{
			FriendID:   user.ID,
			FriendName: newUsername,
			ChatID:     f.ChatID,
		})
	}
	user.Username = newUsername
	return nil
}

// relanguage rewrites every affected chat's language set from the current
// member documents. A full recompute, not an add/remove guess: one change can
// both introduce a code and make another disappear.
func (e *Engine) relanguage(ctx context.Context, user *model.User, newLanguage string) error {
	if err := e.store.SetLanguage(ctx, user.ID, newLanguage); err != nil {
		return err
	}
	user.Language = newLanguage

	for _, entry := range user.Chats {
		chat, err := e.store.GetChat(ctx, entry.ID)
		if err != nil {
			if errs.ErrNotFound.Is(err) {
				continue // stale chat entry, tolerated
			}
			return err
		}
		langs, err := e.recomputeLanguages(ctx, chat.ID, chat.Members)
		if err != nil {
			return err
		}
		e.publish(ctx, bus.ChatChannel(chat.ID), bus.EvtMemberDataUpdated, bus.MemberDataUpdated{
			MemberID:  user.ID,
			ChatLangs: langs,
		})
	}
	return nil
}
