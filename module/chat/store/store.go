package store

import (
	"context"

	"linguachat/module/chat/model"
)

// Store is the document-store adapter the engine runs against. Each method is
// one filtered update or find against a single Users or Chats document and is
// atomic in isolation; there are no cross-document transactions. Element-level
// push/pull/set is used instead of whole-array rewrites so concurrent updates
// to unrelated elements do not clobber each other.
type Store interface {
	// Users
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUsers(ctx context.Context, ids []string) ([]*model.User, error)
	InsertUser(ctx context.Context, u *model.User) error
	UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error)
	SetUsername(ctx context.Context, userID, username string) error
	SetLanguage(ctx context.Context, userID, language string) error

	// Mailbox / outgoing-request pair
	HasNotification(ctx context.Context, userID string, key model.RequestKey) (bool, error)
	PushNotification(ctx context.Context, userID string, n model.Notification) error
	PullNotification(ctx context.Context, userID string, key model.RequestKey) error
	HasOutgoing(ctx context.Context, userID string, key model.RequestKey) (bool, error)
	PushOutgoing(ctx context.Context, userID string, o model.OutgoingRequest) error
	PullOutgoing(ctx context.Context, userID string, key model.RequestKey) error

	// Friend list
	PushFriend(ctx context.Context, userID string, f model.FriendEntry) error
	PullFriend(ctx context.Context, userID, friendID string) error
	SetFriendName(ctx context.Context, userID, friendID, friendName string) error

	// Per-user chat list
	PrependChatEntry(ctx context.Context, userID string, e model.ChatEntry) error
	PullChatEntry(ctx context.Context, userID, chatID string) error
	// BumpChatEntry moves the entry for chatID to the front of the list and
	// adds incr to its unread counter, creating the entry when it is missing
	// (read repair for a not-yet-converged member).
	BumpChatEntry(ctx context.Context, userID, chatID, chatname string, incr int) error
	SetUnreads(ctx context.Context, userID, chatID string, n int) error

	// Chats
	GetChat(ctx context.Context, id string) (*model.Chat, error)
	FindChatByCredentials(ctx context.Context, chatname, password string) (*model.Chat, error)
	ChatnameTaken(ctx context.Context, chatname string) (bool, error)
	SearchPublicChats(ctx context.Context, prefix string, limit int) ([]*model.Chat, error)
	InsertChat(ctx context.Context, c *model.Chat) error
	DeleteChat(ctx context.Context, id string) error
	AddMember(ctx context.Context, chatID string, m model.Member) error
	RemoveMember(ctx context.Context, chatID, memberID string) error
	SetMemberName(ctx context.Context, chatID, memberID, username string) error
	SetChatLanguages(ctx context.Context, chatID string, langs []string) error
	AppendMessage(ctx context.Context, chatID string, msg model.ChatMessage) error
}
