package service

import (
	"context"
	"testing"

	"linguachat/service/bus"
	"linguachat/tools/errs"
)

func TestSendMessageTranslatesForEveryLanguage(t *testing.T) {
	e, st, rb, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "bob", "Bob", "fr")
	ctx := context.Background()

	chatID := befriend(t, e, "alice", "bob")

	msg, err := e.SendMessage(ctx, chatID, "alice", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Author.ID != "alice" || msg.Author.Name != "Alice" {
		t.Fatalf("author = %+v", msg.Author)
	}
	if len(msg.Variants) != 2 {
		t.Fatalf("variants = %+v", msg.Variants)
	}
	if v := msg.VariantFor("en"); v.Content != "hello" {
		t.Fatalf("en variant = %+v", v)
	}
	if v := msg.VariantFor("fr"); v.Content != "[fr] hello" {
		t.Fatalf("fr variant = %+v", v)
	}

	chat := getChat(t, st, chatID)
	if len(chat.Messages) != 1 || chat.Messages[0].ID != msg.ID {
		t.Fatalf("persisted messages = %+v", chat.Messages)
	}

	// Unread accounting: the recipient gains one, the author none.
	if bob := getUser(t, st, "bob"); bob.Chats[0].Unreads != 1 {
		t.Fatalf("bob unreads = %d, want 1", bob.Chats[0].Unreads)
	}
	if alice := getUser(t, st, "alice"); alice.Chats[0].Unreads != 0 {
		t.Fatalf("alice unreads = %d, want 0", alice.Chats[0].Unreads)
	}

	if evs := rb.find(bus.ChatChannel(chatID), bus.EvtNewMessage); len(evs) != 1 {
		t.Fatalf("new-message events = %d, want 1", len(evs))
	}
	for _, id := range []string{"alice", "bob"} {
		if evs := rb.find(bus.UserChannel(id), bus.EvtChatNewMessage); len(evs) != 1 {
			t.Fatalf("chat-new-message events for %s = %d, want 1", id, len(evs))
		}
	}
}

func TestSendMessageSingleLanguageSkipsTranslator(t *testing.T) {
	e, st, _, tr := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "bob", "Bob", "en")
	ctx := context.Background()

	chatID := befriend(t, e, "alice", "bob")

	msg, err := e.SendMessage(ctx, chatID, "alice", "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if tr.calls != 0 {
		t.Fatalf("translator calls = %d, want 0", tr.calls)
	}
	if len(msg.Variants) != 1 || msg.Variants[0].Language != "en" {
		t.Fatalf("variants = %+v", msg.Variants)
	}
}

func TestSendMessageTranslationFailureWritesNothing(t *testing.T) {
	e, st, _, tr := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "bob", "Bob", "fr")
	ctx := context.Background()

	chatID := befriend(t, e, "alice", "bob")
	tr.fail = true

	if _, err := e.SendMessage(ctx, chatID, "alice", "hello"); err == nil {
		t.Fatal("expected error from failing translator")
	}
	if got := len(getChat(t, st, chatID).Messages); got != 0 {
		t.Fatalf("messages persisted despite failure: %d", got)
	}
	if bob := getUser(t, st, "bob"); bob.Chats[0].Unreads != 0 {
		t.Fatalf("bob unreads = %d, want 0", bob.Chats[0].Unreads)
	}
}

func TestSendMessageNonMember(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "mallory", "Mallory", "en")
	ctx := context.Background()

	chat, err := e.CreateChat(ctx, "alice", "gophers", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.SendMessage(ctx, chat.ID, "mallory", "hi"); !errs.ErrArgs.Is(err) {
		t.Fatalf("err = %v, want ErrArgs", err)
	}
}

func TestSendMessageMovesChatToFront(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "bob", "Bob", "en")
	ctx := context.Background()

	first, err := e.CreateChat(ctx, "alice", "first", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := e.CreateChat(ctx, "alice", "second", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, c := range []string{first.ID, second.ID} {
		if _, err := e.JoinChat(ctx, "bob", c); err != nil {
			t.Fatalf("join: %v", err)
		}
	}

	// second is currently at the front of alice's list; messaging in first
	// must reorder it back to the top.
	if _, err := e.SendMessage(ctx, first.ID, "bob", "ping"); err != nil {
		t.Fatalf("send: %v", err)
	}
	alice := getUser(t, st, "alice")
	if alice.Chats[0].ID != first.ID {
		t.Fatalf("front of chat list = %+v, want %s", alice.Chats[0], first.ID)
	}
	if alice.Chats[0].Unreads != 1 {
		t.Fatalf("unreads = %d, want 1", alice.Chats[0].Unreads)
	}
}

func TestMarkRead(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "bob", "Bob", "en")
	ctx := context.Background()

	chatID := befriend(t, e, "alice", "bob")
	if _, err := e.SendMessage(ctx, chatID, "alice", "one"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := e.SendMessage(ctx, chatID, "alice", "two"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if bob := getUser(t, st, "bob"); bob.Chats[0].Unreads != 2 {
		t.Fatalf("bob unreads = %d, want 2", bob.Chats[0].Unreads)
	}

	if err := e.MarkRead(ctx, "bob", chatID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if bob := getUser(t, st, "bob"); bob.Chats[0].Unreads != 0 {
		t.Fatalf("bob unreads = %d, want 0", bob.Chats[0].Unreads)
	}
	// Idempotent.
	if err := e.MarkRead(ctx, "bob", chatID); err != nil {
		t.Fatalf("second mark read: %v", err)
	}
}

func TestGetChatDataZeroesUnreads(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "bob", "Bob", "en")
	ctx := context.Background()

	chatID := befriend(t, e, "alice", "bob")
	if _, err := e.SendMessage(ctx, chatID, "alice", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	view, err := e.GetChatData(ctx, chatID, "bob")
	if err != nil {
		t.Fatalf("get chat data: %v", err)
	}
	// Friend chats are unnamed; the viewer sees the other member's username.
	if view.DisplayName != "Alice" {
		t.Fatalf("display name = %q, want Alice", view.DisplayName)
	}
	if bob := getUser(t, st, "bob"); bob.Chats[0].Unreads != 0 {
		t.Fatalf("bob unreads after view = %d, want 0", bob.Chats[0].Unreads)
	}
}

func TestGetChatDataNonMember(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "mallory", "Mallory", "en")
	ctx := context.Background()

	chat, err := e.CreateChat(ctx, "alice", "gophers", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.GetChatData(ctx, chat.ID, "mallory"); !errs.ErrArgs.Is(err) {
		t.Fatalf("err = %v, want ErrArgs", err)
	}
}
