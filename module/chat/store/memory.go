package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"linguachat/module/chat/model"
	"linguachat/tools/errs"
)

// Memory is an in-process Store used by tests and for running without a
// MongoDB instance. Same per-document atomicity as the real adapter: one
// method call mutates one document under the lock, nothing spans calls.
type Memory struct {
	mu    sync.RWMutex
	users map[string]*model.User
	chats map[string]*model.Chat
}

func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]*model.User),
		chats: make(map[string]*model.Chat),
	}
}

var _ Store = (*Memory)(nil)

func cloneUser(u *model.User) *model.User {
	cp := *u
	cp.FriendList = append([]model.FriendEntry(nil), u.FriendList...)
	cp.Chats = append([]model.ChatEntry(nil), u.Chats...)
	cp.Mailbox = append([]model.Notification(nil), u.Mailbox...)
	cp.OutgoingRequests = append([]model.OutgoingRequest(nil), u.OutgoingRequests...)
	return &cp
}

func cloneChat(c *model.Chat) *model.Chat {
	cp := *c
	cp.Members = append([]model.Member(nil), c.Members...)
	cp.Languages = append([]string(nil), c.Languages...)
	cp.Messages = append([]model.ChatMessage(nil), c.Messages...)
	return &cp
}

func (s *Memory) user(id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errs.ErrNotFound.WrapMsg("user", "id", id)
	}
	return u, nil
}

func (s *Memory) chat(id string) (*model.Chat, error) {
	c, ok := s.chats[id]
	if !ok {
		return nil, errs.ErrNotFound.WrapMsg("chat", "id", id)
	}
	return c, nil
}

// ---- users ----

func (s *Memory) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, err := s.user(id)
	if err != nil {
		return nil, err
	}
	return cloneUser(u), nil
}

func (s *Memory) GetUsers(ctx context.Context, ids []string) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (s *Memory) InsertUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = cloneUser(u)
	return nil
}

func (s *Memory) UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, u := range s.users {
		if id != excludeUserID && u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *Memory) SetUsername(ctx context.Context, userID, username string) error {
	return s.withUser(userID, func(u *model.User) { u.Username = username })
}

func (s *Memory) SetLanguage(ctx context.Context, userID, language string) error {
	return s.withUser(userID, func(u *model.User) { u.Language = language })
}

func (s *Memory) withUser(userID string, fn func(*model.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.user(userID)
	if err != nil {
		return err
	}
	fn(u)
	return nil
}

func (s *Memory) withChat(chatID string, fn func(*model.Chat)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.chat(chatID)
	if err != nil {
		return err
	}
	fn(c)
	return nil
}

// ---- mailbox / outgoing ----

func (s *Memory) HasNotification(ctx context.Context, userID string, key model.RequestKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, err := s.user(userID)
	if err != nil {
		return false, err
	}
	for _, n := range u.Mailbox {
		if key.Matches(n.Key()) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Memory) PushNotification(ctx context.Context, userID string, n model.Notification) error {
	return s.withUser(userID, func(u *model.User) { u.Mailbox = append(u.Mailbox, n) })
}

func (s *Memory) PullNotification(ctx context.Context, userID string, key model.RequestKey) error {
	return s.withUser(userID, func(u *model.User) {
		out := u.Mailbox[:0]
		for _, n := range u.Mailbox {
			if !key.Matches(n.Key()) {
				out = append(out, n)
			}
		}
		u.Mailbox = out
	})
}

func (s *Memory) HasOutgoing(ctx context.Context, userID string, key model.RequestKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, err := s.user(userID)
	if err != nil {
		return false, err
	}
	for _, o := range u.OutgoingRequests {
		if key.Matches(o.Key()) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Memory) PushOutgoing(ctx context.Context, userID string, o model.OutgoingRequest) error {
	return s.withUser(userID, func(u *model.User) { u.OutgoingRequests = append(u.OutgoingRequests, o) })
}

func (s *Memory) PullOutgoing(ctx context.Context, userID string, key model.RequestKey) error {
	return s.withUser(userID, func(u *model.User) {
		out := u.OutgoingRequests[:0]
		for _, o := range u.OutgoingRequests {
			if !key.Matches(o.Key()) {
				out = append(out, o)
			}
		}
		u.OutgoingRequests = out
	})
}

// ---- friend list ----

func (s *Memory) PushFriend(ctx context.Context, userID string, f model.FriendEntry) error {
	return s.withUser(userID, func(u *model.User) { u.FriendList = append(u.FriendList, f) })
}

func (s *Memory) PullFriend(ctx context.Context, userID, friendID string) error {
	return s.withUser(userID, func(u *model.User) {
		out := u.FriendList[:0]
		for _, f := range u.FriendList {
			if f.FriendID != friendID {
				out = append(out, f)
			}
		}
		u.FriendList = out
	})
}

func (s *Memory) SetFriendName(ctx context.Context, userID, friendID, friendName string) error {
	return s.withUser(userID, func(u *model.User) {
		for i := range u.FriendList {
			if u.FriendList[i].FriendID == friendID {
				u.FriendList[i].FriendName = friendName
			}
		}
	})
}

// ---- per-user chat list ----

func (s *Memory) PrependChatEntry(ctx context.Context, userID string, e model.ChatEntry) error {
	return s.withUser(userID, func(u *model.User) {
		u.Chats = append([]model.ChatEntry{e}, u.Chats...)
	})
}

func (s *Memory) PullChatEntry(ctx context.Context, userID, chatID string) error {
	return s.withUser(userID, func(u *model.User) {
		out := u.Chats[:0]
		for _, e := range u.Chats {
			if e.ID != chatID {
				out = append(out, e)
			}
		}
		u.Chats = out
	})
}

func (s *Memory) BumpChatEntry(ctx context.Context, userID, chatID, chatname string, incr int) error {
	return s.withUser(userID, func(u *model.User) {
		entry := model.ChatEntry{ID: chatID, Chatname: chatname, Unreads: incr}
		out := make([]model.ChatEntry, 0, len(u.Chats)+1)
		for _, e := range u.Chats {
			if e.ID == chatID {
				entry = e
				entry.Unreads += incr
			} else {
				out = append(out, e)
			}
		}
		u.Chats = append([]model.ChatEntry{entry}, out...)
	})
}

func (s *Memory) SetUnreads(ctx context.Context, userID, chatID string, n int) error {
	return s.withUser(userID, func(u *model.User) {
		for i := range u.Chats {
			if u.Chats[i].ID == chatID {
				u.Chats[i].Unreads = n
			}
		}
	})
}

// ---- chats ----

func (s *Memory) GetChat(ctx context.Context, id string) (*model.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.chat(id)
	if err != nil {
		return nil, err
	}
	return cloneChat(c), nil
}

func (s *Memory) FindChatByCredentials(ctx context.Context, chatname, password string) (*model.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if password != "" {
		for _, c := range s.chats {
			if c.Chatname == chatname && c.Password == password {
				return cloneChat(c), nil
			}
		}
	}
	return nil, errs.ErrNotFound.WrapMsg("chat", "chatname", chatname)
}

func (s *Memory) ChatnameTaken(ctx context.Context, chatname string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.chats {
		if c.Chatname == chatname {
			return true, nil
		}
	}
	return false, nil
}

func (s *Memory) SearchPublicChats(ctx context.Context, prefix string, limit int) ([]*model.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Chat
	for _, c := range s.chats {
		if c.IsFriendChat || c.Password != "" || !strings.HasPrefix(c.Chatname, prefix) {
			continue
		}
		cp := cloneChat(c)
		cp.Messages = nil
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Chatname < out[j].Chatname })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Memory) InsertChat(ctx context.Context, c *model.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[c.ID] = cloneChat(c)
	return nil
}

func (s *Memory) DeleteChat(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, id)
	return nil
}

func (s *Memory) AddMember(ctx context.Context, chatID string, m model.Member) error {
	return s.withChat(chatID, func(c *model.Chat) { c.Members = append(c.Members, m) })
}

func (s *Memory) RemoveMember(ctx context.Context, chatID, memberID string) error {
	return s.withChat(chatID, func(c *model.Chat) {
		out := c.Members[:0]
		for _, m := range c.Members {
			if m.ID != memberID {
				out = append(out, m)
			}
		}
		c.Members = out
	})
}

func (s *Memory) SetMemberName(ctx context.Context, chatID, memberID, username string) error {
	return s.withChat(chatID, func(c *model.Chat) {
		for i := range c.Members {
			if c.Members[i].ID == memberID {
				c.Members[i].Username = username
			}
		}
	})
}

func (s *Memory) SetChatLanguages(ctx context.Context, chatID string, langs []string) error {
	return s.withChat(chatID, func(c *model.Chat) {
		c.Languages = append([]string(nil), langs...)
	})
}

func (s *Memory) AppendMessage(ctx context.Context, chatID string, msg model.ChatMessage) error {
	return s.withChat(chatID, func(c *model.Chat) { c.Messages = append(c.Messages, msg) })
}
