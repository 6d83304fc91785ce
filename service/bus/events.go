package bus

// Personal-channel events.
const (
	EvtNewNotif          = "new-notif"
	EvtAcceptedFriend    = "accepted-fr"
	EvtFriendDataUpdated = "friend-data-updated"
	EvtUnfriended        = "unfriended"
	EvtChatNewMessage    = "chat-new-message"
)

// Room-channel events.
const (
	EvtNewMessage        = "new-message"
	EvtNewMember         = "new-member"
	EvtLeftChat          = "left-chat"
	EvtMemberDataUpdated = "member-data-updated"
)

// Payload shapes. Field names are wire contract; clients patch local state
// from these and fall back to a fresh fetch when anything looks stale.

type AcceptedFriend struct {
	ChatID     string `json:"chat_id"`
	FriendID   string `json:"friend_id"`
	FriendName string `json:"friend_name"`
}

type FriendDataUpdated struct {
	FriendID   string `json:"friendId"`
	FriendName string `json:"friendName"`
	ChatID     string `json:"chatId"`
}

type Unfriended struct {
	FriendID string `json:"friendId"`
	ChatID   string `json:"chatId"`
}

type ChatNewMessage struct {
	ChatID   string `json:"chatId"`
	Chatname string `json:"chatname"` // derived per recipient for unnamed chats
}

type NewMember struct {
	MemberID   string `json:"memberId"`
	MemberName string `json:"memberName"`
	MemberLan  string `json:"memberLan"`
}

type LeftChat struct {
	MemberID string `json:"memberId"`
}

type MemberDataUpdated struct {
	MemberID   string   `json:"memberId"`
	MemberName string   `json:"memberName,omitempty"`
	ChatLangs  []string `json:"chatLangs,omitempty"`
}
