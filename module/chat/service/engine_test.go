package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"linguachat/module/chat/model"
	"linguachat/module/chat/store"
	"linguachat/service/bus"
)

type recordedEvent struct {
	Channel string
	Event   string
	Data    any
}

// recordBus captures publishes so tests can assert on the event stream.
type recordBus struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordBus) Publish(ctx context.Context, channel, event string, data any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Channel: channel, Event: event, Data: data})
	return nil
}

func (b *recordBus) Subscribe(channel string, h bus.Handler) (func(), error) {
	return func() {}, nil
}

func (b *recordBus) Close() {}

func (b *recordBus) find(channel, event string) []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedEvent
	for _, e := range b.events {
		if e.Channel == channel && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// stubTranslator tags each target so tests can tell variants apart. fail
// makes every call error.
type stubTranslator struct {
	fail  bool
	calls int
}

func (t *stubTranslator) Translate(ctx context.Context, content, sourceLan string, targetLans []string) (map[string]string, error) {
	t.calls++
	if t.fail {
		return nil, fmt.Errorf("translator down")
	}
	out := make(map[string]string, len(targetLans))
	for _, lan := range targetLans {
		out[lan] = "[" + lan + "] " + content
	}
	return out, nil
}

func newTestEngine(t *testing.T) (*Engine, *store.Memory, *recordBus, *stubTranslator) {
	t.Helper()
	st := store.NewMemory()
	rb := &recordBus{}
	tr := &stubTranslator{}
	return NewEngine(st, rb, tr), st, rb, tr
}

func seedUser(t *testing.T, st *store.Memory, id, username, language string) {
	t.Helper()
	err := st.InsertUser(context.Background(), &model.User{
		ID:               id,
		Username:         username,
		Language:         language,
		FriendList:       []model.FriendEntry{},
		Chats:            []model.ChatEntry{},
		Mailbox:          []model.Notification{},
		OutgoingRequests: []model.OutgoingRequest{},
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func getUser(t *testing.T, st *store.Memory, id string) *model.User {
	t.Helper()
	u, err := st.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("get user %s: %v", id, err)
	}
	return u
}

func getChat(t *testing.T, st *store.Memory, id string) *model.Chat {
	t.Helper()
	c, err := st.GetChat(context.Background(), id)
	if err != nil {
		t.Fatalf("get chat %s: %v", id, err)
	}
	return c
}

// befriend runs the full request/accept handshake and returns the friend
// chat's id.
func befriend(t *testing.T, e *Engine, senderID, receiverID string) string {
	t.Helper()
	ctx := context.Background()
	if err := e.SendFriendRequest(ctx, senderID, receiverID); err != nil {
		t.Fatalf("send friend request: %v", err)
	}
	chatID, err := e.AcceptFriendRequest(ctx, senderID, receiverID)
	if err != nil {
		t.Fatalf("accept friend request: %v", err)
	}
	return chatID
}
