package service

import (
	"context"
	"time"

	"linguachat/module/chat/model"
	"linguachat/module/chat/store"
	"linguachat/tools/errs"
	security "linguachat/tools/security"
)

// LoginResult carries the session token alongside the user document the
// client boots from.
type LoginResult struct {
	Token    string      `json:"token"`
	ExpireAt time.Time   `json:"expire_at"`
	User     *model.User `json:"user"`
}

// Login trusts the stable user identifier the external identity provider
// resolved and creates the user document on first sight, with the default
// username sentinel and the reported language. The engine never sees
// credentials.
func Login(ctx context.Context, s store.Store, opts security.Options, userID, language string) (*LoginResult, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		if !errs.ErrNotFound.Is(err) {
			return nil, err
		}
		u = &model.User{
			ID:               userID,
			Username:         model.DefaultUsername,
			Language:         language,
			FriendList:       []model.FriendEntry{},
			Chats:            []model.ChatEntry{},
			Mailbox:          []model.Notification{},
			OutgoingRequests: []model.OutgoingRequest{},
		}
		if err := s.InsertUser(ctx, u); err != nil {
			return nil, err
		}
	}

	token, exp, err := security.Generate(opts, userID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpireAt: exp, User: u}, nil
}
