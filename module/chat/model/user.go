package model

// DefaultUsername is the sentinel assigned on first login. Uniqueness is only
// enforced once a user picks a name away from it.
const DefaultUsername = "new user"

// Request types carried by mailbox entries and their outgoing mirrors.
const (
	RequestFriend = "FRIEND"
	RequestChat   = "CHAT"
)

// User is the per-user document. chats is ordered most-recently-active first;
// friend_list keeps a denormalized copy of each friend's username, refreshed
// on rename.
type User struct {
	ID       string `bson:"_id" json:"id"`
	Username string `bson:"username" json:"username"`
	Language string `bson:"language" json:"language"`

	FriendList       []FriendEntry     `bson:"friend_list" json:"friendList"`
	Chats            []ChatEntry       `bson:"chats" json:"chats"`
	Mailbox          []Notification    `bson:"mailbox" json:"mailbox"`
	OutgoingRequests []OutgoingRequest `bson:"outgoing_requests" json:"outgoingRequests"`
}

// FriendEntry also carries the id of the paired friend chat so unfriending
// and rename propagation never have to locate it by member-content search.
type FriendEntry struct {
	FriendID   string `bson:"friend_id" json:"friendId"`
	FriendName string `bson:"friend_name" json:"friendName"` // cached, refreshed on rename
	ChatID     string `bson:"chat_id" json:"chatId"`
}

// ChatEntry is one row of a user's chat list. Chatname is empty for friend
// chats; the display name is derived from the other members at render time.
type ChatEntry struct {
	ID       string `bson:"id" json:"id"`
	Chatname string `bson:"chatname,omitempty" json:"chatname,omitempty"`
	Unreads  int    `bson:"unreads" json:"unreads"`
}

// Notification is a pending inbound request on the receiver's mailbox.
// Uniqueness key is (type, id_sender, id_chat).
type Notification struct {
	Type           string `bson:"type" json:"type"` // RequestFriend | RequestChat
	SenderID       string `bson:"id_sender" json:"id_sender"`
	SenderUsername string `bson:"username_sender" json:"username_sender"`
	ChatID         string `bson:"id_chat,omitempty" json:"id_chat,omitempty"`
	Chatname       string `bson:"chatname,omitempty" json:"chatname,omitempty"`
}

// OutgoingRequest mirrors a mailbox entry on the sender side. It exists only
// to suppress duplicate sends without a reverse lookup.
type OutgoingRequest struct {
	Type       string `bson:"type" json:"type"`
	ReceiverID string `bson:"id_receiver" json:"id_receiver"`
	ChatID     string `bson:"id_chat,omitempty" json:"id_chat,omitempty"`
}

// RequestKey identifies one pending-request edge from either endpoint.
type RequestKey struct {
	Type   string
	UserID string // sender id on the mailbox side, receiver id on the outgoing side
	ChatID string // empty for friend requests
}

func (n Notification) Key() RequestKey {
	return RequestKey{Type: n.Type, UserID: n.SenderID, ChatID: n.ChatID}
}

func (o OutgoingRequest) Key() RequestKey {
	return RequestKey{Type: o.Type, UserID: o.ReceiverID, ChatID: o.ChatID}
}

// Matches reports whether k selects other. An empty UserID acts as a
// wildcard: accepting a chat invitation removes the entry for that chat
// whoever sent it.
func (k RequestKey) Matches(other RequestKey) bool {
	if k.Type != other.Type || k.ChatID != other.ChatID {
		return false
	}
	return k.UserID == "" || k.UserID == other.UserID
}
