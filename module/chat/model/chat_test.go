package model

import (
	"reflect"
	"testing"
)

func TestDisplayNameFor(t *testing.T) {
	named := &Chat{Chatname: "gophers", Members: []Member{{ID: "a", Username: "Alice"}}}
	if got := named.DisplayNameFor("a"); got != "gophers" {
		t.Fatalf("named chat display = %q", got)
	}

	unnamed := &Chat{Members: []Member{
		{ID: "a", Username: "Alice"},
		{ID: "b", Username: "Bob"},
		{ID: "c", Username: "Carol"},
	}}
	if got := unnamed.DisplayNameFor("b"); got != "Alice, Carol" {
		t.Fatalf("unnamed chat display = %q", got)
	}
	if got := unnamed.DisplayNameFor("a"); got != "Bob, Carol" {
		t.Fatalf("unnamed chat display = %q", got)
	}
}

func TestLanguagesOf(t *testing.T) {
	members := []Member{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	langs := map[string]string{"a": "en", "b": "fr", "c": "en", "d": ""}

	got := LanguagesOf(members, func(id string) (string, bool) {
		lan, ok := langs[id]
		return lan, ok
	})
	if !reflect.DeepEqual(got, []string{"en", "fr"}) {
		t.Fatalf("languages = %v", got)
	}
}

func TestUnionLanguages(t *testing.T) {
	got := UnionLanguages("en", "fr", "en", "", "de")
	if !reflect.DeepEqual(got, []string{"en", "fr", "de"}) {
		t.Fatalf("union = %v", got)
	}
}

func TestRequestKeyMatches(t *testing.T) {
	n := Notification{Type: RequestChat, SenderID: "alice", ChatID: "c1"}

	exact := RequestKey{Type: RequestChat, UserID: "alice", ChatID: "c1"}
	if !exact.Matches(n.Key()) {
		t.Fatal("exact key must match")
	}
	wildcard := RequestKey{Type: RequestChat, ChatID: "c1"}
	if !wildcard.Matches(n.Key()) {
		t.Fatal("empty UserID must act as a wildcard")
	}
	otherChat := RequestKey{Type: RequestChat, ChatID: "c2"}
	if otherChat.Matches(n.Key()) {
		t.Fatal("chat id mismatch must not match")
	}
	otherType := RequestKey{Type: RequestFriend, UserID: "alice", ChatID: "c1"}
	if otherType.Matches(n.Key()) {
		t.Fatal("type mismatch must not match")
	}
}
