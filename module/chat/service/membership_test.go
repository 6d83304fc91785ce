package service

import (
	"context"
	"testing"

	"linguachat/service/bus"
	"linguachat/tools/errs"
)

func TestCreateChat(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")

	chat, err := e.CreateChat(context.Background(), "alice", "gophers", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if chat.Chatname != "gophers" || chat.IsFriendChat {
		t.Fatalf("chat = %+v", chat)
	}
	if len(chat.Members) != 1 || chat.Members[0].ID != "alice" {
		t.Fatalf("members = %+v", chat.Members)
	}
	if len(chat.Languages) != 1 || chat.Languages[0] != "en" {
		t.Fatalf("languages = %v", chat.Languages)
	}

	alice := getUser(t, st, "alice")
	if len(alice.Chats) != 1 || alice.Chats[0].ID != chat.ID || alice.Chats[0].Chatname != "gophers" {
		t.Fatalf("chat list = %+v", alice.Chats)
	}
}

func TestCreateChatNameTaken(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	ctx := context.Background()

	if _, err := e.CreateChat(ctx, "alice", "gophers", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := e.CreateChat(ctx, "alice", "gophers", "")
	if !errs.ErrChatnameTaken.Is(err) {
		t.Fatalf("err = %v, want ErrChatnameTaken", err)
	}
	if !errs.IsSoftReject(err) {
		t.Fatalf("chatname collision must be a soft rejection, got %v", err)
	}
}

func TestJoinChatGrowsLanguages(t *testing.T) {
	e, st, rb, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "boris", "Boris", "ru")
	ctx := context.Background()

	chat, err := e.CreateChat(ctx, "alice", "gophers", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.JoinChat(ctx, "boris", chat.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	got := getChat(t, st, chat.ID)
	if len(got.Members) != 2 {
		t.Fatalf("members = %+v", got.Members)
	}
	if len(got.Languages) != 2 || got.Languages[0] != "en" || got.Languages[1] != "ru" {
		t.Fatalf("languages = %v", got.Languages)
	}

	boris := getUser(t, st, "boris")
	if len(boris.Chats) != 1 || boris.Chats[0].ID != chat.ID || boris.Chats[0].Unreads != 0 {
		t.Fatalf("chat list = %+v", boris.Chats)
	}

	evs := rb.find(bus.ChatChannel(chat.ID), bus.EvtNewMember)
	if len(evs) != 1 {
		t.Fatalf("new-member events = %d, want 1", len(evs))
	}
	ev := evs[0].Data.(bus.NewMember)
	if ev.MemberID != "boris" || ev.MemberName != "Boris" || ev.MemberLan != "ru" {
		t.Fatalf("new-member payload = %+v", ev)
	}
}

func TestJoinChatAlreadyMember(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	ctx := context.Background()

	chat, err := e.CreateChat(ctx, "alice", "gophers", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = e.JoinChat(ctx, "alice", chat.ID)
	if !errs.ErrAlreadyMember.Is(err) {
		t.Fatalf("err = %v, want ErrAlreadyMember", err)
	}
	if !errs.IsSoftReject(err) {
		t.Fatalf("double join must be a soft rejection, got %v", err)
	}
}

func TestJoinChatByName(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "bob", "Bob", "en")
	ctx := context.Background()

	chat, err := e.CreateChat(ctx, "alice", "secret-club", "hunter2")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := e.JoinChatByName(ctx, "bob", "secret-club", "wrong"); !errs.ErrNotFound.Is(err) {
		t.Fatalf("wrong password err = %v, want ErrNotFound", err)
	}
	if _, err := e.JoinChatByName(ctx, "bob", "secret-club", "hunter2"); err != nil {
		t.Fatalf("join by credentials: %v", err)
	}
	if got := getChat(t, st, chat.ID); len(got.Members) != 2 {
		t.Fatalf("members = %+v", got.Members)
	}
}

func TestJoinByNameNeverMatchesPasswordless(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "bob", "Bob", "en")
	ctx := context.Background()

	if _, err := e.CreateChat(ctx, "alice", "gophers", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.JoinChatByName(ctx, "bob", "gophers", ""); !errs.ErrNotFound.Is(err) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLeaveChatRecomputesLanguages(t *testing.T) {
	e, st, rb, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "boris", "Boris", "ru")
	seedUser(t, st, "carol", "Carol", "en")
	ctx := context.Background()

	chat, err := e.CreateChat(ctx, "alice", "gophers", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, id := range []string{"boris", "carol"} {
		if _, err := e.JoinChat(ctx, id, chat.ID); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}

	if err := e.LeaveChat(ctx, "boris", chat.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}

	got := getChat(t, st, chat.ID)
	if len(got.Members) != 2 {
		t.Fatalf("members = %+v", got.Members)
	}
	if len(got.Languages) != 1 || got.Languages[0] != "en" {
		t.Fatalf("languages = %v, want [en] after the only ru speaker left", got.Languages)
	}
	if got := len(getUser(t, st, "boris").Chats); got != 0 {
		t.Fatalf("leaver chat list len = %d, want 0", got)
	}

	evs := rb.find(bus.ChatChannel(chat.ID), bus.EvtLeftChat)
	if len(evs) != 1 {
		t.Fatalf("left-chat events = %d, want 1", len(evs))
	}
	if ev := evs[0].Data.(bus.LeftChat); ev.MemberID != "boris" {
		t.Fatalf("left-chat payload = %+v", ev)
	}
}

func TestLeaveChatDeletesWhenOneWouldRemain(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "bob", "Bob", "en")
	ctx := context.Background()

	chat, err := e.CreateChat(ctx, "alice", "gophers", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.JoinChat(ctx, "bob", chat.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := e.LeaveChat(ctx, "alice", chat.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}

	if _, err := st.GetChat(ctx, chat.ID); !errs.ErrNotFound.Is(err) {
		t.Fatalf("chat should be deleted, err = %v", err)
	}
	// The remaining member's chat list converges too.
	if got := len(getUser(t, st, "bob").Chats); got != 0 {
		t.Fatalf("remaining member chat list len = %d, want 0", got)
	}
}

func TestLeaveChatNonMember(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "mallory", "Mallory", "en")
	ctx := context.Background()

	chat, err := e.CreateChat(ctx, "alice", "gophers", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := e.LeaveChat(ctx, "mallory", chat.ID); !errs.ErrNotFound.Is(err) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := st.GetChat(ctx, chat.ID); err != nil {
		t.Fatalf("chat must survive a non-member leave: %v", err)
	}
}

func TestLeaveChatRejectsFriendChat(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "bob", "Bob", "fr")

	chatID := befriend(t, e, "alice", "bob")

	err := e.LeaveChat(context.Background(), "alice", chatID)
	if !errs.ErrArgs.Is(err) {
		t.Fatalf("err = %v, want ErrArgs", err)
	}
	if _, err := st.GetChat(context.Background(), chatID); err != nil {
		t.Fatalf("friend chat must survive: %v", err)
	}
}

func TestSearchChatsSkipsPrivateAndFriendChats(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedUser(t, st, "alice", "Alice", "en")
	seedUser(t, st, "bob", "Bob", "fr")
	ctx := context.Background()

	if _, err := e.CreateChat(ctx, "alice", "go-public", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.CreateChat(ctx, "alice", "go-private", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}
	befriend(t, e, "alice", "bob")

	chats, err := e.SearchChats(ctx, "go-", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(chats) != 1 || chats[0].Chatname != "go-public" {
		t.Fatalf("search result = %+v", chats)
	}
	if chats[0].Password != "" {
		t.Fatal("password leaked into search result")
	}
}
