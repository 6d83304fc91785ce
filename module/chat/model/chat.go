package model

// Chat is the chat-room document. members is in join order with denormalized
// usernames; languages is the set of languages currently spoken by at least
// one member and is recomputed, never appended blindly, on every membership
// or language change.
type Chat struct {
	ID       string `bson:"_id" json:"id"`
	Chatname string `bson:"chatname,omitempty" json:"chatname,omitempty"`

	Members   []Member      `bson:"members" json:"members"`
	Languages []string      `bson:"languages" json:"languages"`
	Messages  []ChatMessage `bson:"messages" json:"messages"`

	// Password makes the chat private/unlisted; joining by name requires the
	// exact (chatname, password) pair.
	Password string `bson:"password,omitempty" json:"-"`

	// IsFriendChat marks the 2-member chat paired with a friendship edge.
	// Such chats cannot be left, never appear in search, and are deleted by
	// unfriending.
	IsFriendChat bool `bson:"is_friend_chat" json:"isFriendChat"`
}

type Member struct {
	ID       string `bson:"id" json:"id"`
	Username string `bson:"username" json:"username"` // cached, refreshed on rename
}

// MemberIDs returns the current member ids in join order.
func (c *Chat) MemberIDs() []string {
	out := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		out = append(out, m.ID)
	}
	return out
}

// HasMember reports whether userID is currently a member.
func (c *Chat) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// DisplayNameFor derives the chat name a given viewer sees: the stored
// chatname when present, else the comma-joined usernames of all OTHER
// members.
func (c *Chat) DisplayNameFor(viewerID string) string {
	if c.Chatname != "" {
		return c.Chatname
	}
	name := ""
	for _, m := range c.Members {
		if m.ID == viewerID {
			continue
		}
		if name != "" {
			name += ", "
		}
		name += m.Username
	}
	return name
}

// LanguagesOf recomputes the distinct non-empty language set over the given
// members, preserving first-seen order.
func LanguagesOf(members []Member, lookup func(userID string) (string, bool)) []string {
	langs := make([]string, 0, len(members))
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		lan, ok := lookup(m.ID)
		if !ok || lan == "" || seen[lan] {
			continue
		}
		seen[lan] = true
		langs = append(langs, lan)
	}
	return langs
}

// UnionLanguages collapses duplicates while preserving argument order.
func UnionLanguages(langs ...string) []string {
	out := make([]string, 0, len(langs))
	seen := make(map[string]bool, len(langs))
	for _, lan := range langs {
		if lan == "" || seen[lan] {
			continue
		}
		seen[lan] = true
		out = append(out, lan)
	}
	return out
}
