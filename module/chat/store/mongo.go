package store

import (
	"context"
	"regexp"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"linguachat/module/chat/model"
	"linguachat/tools/errs"
)

const (
	collUsers = "users"
	collChats = "chats"
)

type Mongo struct {
	users *mongo.Collection
	chats *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		users: db.Collection(collUsers),
		chats: db.Collection(collChats),
	}
}

var _ Store = (*Mongo)(nil)

// ---- users ----

func (s *Mongo) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound.WrapMsg("user", "id", id)
	}
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}
	return &u, nil
}

func (s *Mongo) GetUsers(ctx context.Context, ids []string) ([]*model.User, error) {
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}
	defer cur.Close(ctx)

	var out []*model.User
	for cur.Next(ctx) {
		var u model.User
		if err := cur.Decode(&u); err != nil {
			return nil, errs.ErrStorage.WrapMsg(err.Error())
		}
		out = append(out, &u)
	}
	return out, cur.Err()
}

func (s *Mongo) InsertUser(ctx context.Context, u *model.User) error {
	_, err := s.users.InsertOne(ctx, u)
	return wrapStorage(err)
}

func (s *Mongo) UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error) {
	filter := bson.M{"username": username}
	if excludeUserID != "" {
		filter["_id"] = bson.M{"$ne": excludeUserID}
	}
	n, err := s.users.CountDocuments(ctx, filter)
	if err != nil {
		return false, wrapStorage(err)
	}
	return n > 0, nil
}

func (s *Mongo) SetUsername(ctx context.Context, userID, username string) error {
	return s.setUserField(ctx, userID, "username", username)
}

func (s *Mongo) SetLanguage(ctx context.Context, userID, language string) error {
	return s.setUserField(ctx, userID, "language", language)
}

func (s *Mongo) setUserField(ctx context.Context, userID, field string, v any) error {
	_, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{field: v}})
	return wrapStorage(err)
}

// ---- mailbox / outgoing ----

func mailboxElem(key model.RequestKey) bson.M {
	elem := bson.M{"type": key.Type}
	if key.UserID != "" {
		elem["id_sender"] = key.UserID
	}
	if key.ChatID != "" {
		elem["id_chat"] = key.ChatID
	}
	return elem
}

func outgoingElem(key model.RequestKey) bson.M {
	elem := bson.M{"type": key.Type, "id_receiver": key.UserID}
	if key.ChatID != "" {
		elem["id_chat"] = key.ChatID
	}
	return elem
}

func (s *Mongo) HasNotification(ctx context.Context, userID string, key model.RequestKey) (bool, error) {
	return s.userHasElem(ctx, userID, "mailbox", mailboxElem(key))
}

func (s *Mongo) PushNotification(ctx context.Context, userID string, n model.Notification) error {
	return s.userPush(ctx, userID, "mailbox", n)
}

func (s *Mongo) PullNotification(ctx context.Context, userID string, key model.RequestKey) error {
	return s.userPull(ctx, userID, "mailbox", mailboxElem(key))
}

func (s *Mongo) HasOutgoing(ctx context.Context, userID string, key model.RequestKey) (bool, error) {
	return s.userHasElem(ctx, userID, "outgoing_requests", outgoingElem(key))
}

func (s *Mongo) PushOutgoing(ctx context.Context, userID string, o model.OutgoingRequest) error {
	return s.userPush(ctx, userID, "outgoing_requests", o)
}

func (s *Mongo) PullOutgoing(ctx context.Context, userID string, key model.RequestKey) error {
	return s.userPull(ctx, userID, "outgoing_requests", outgoingElem(key))
}

func (s *Mongo) userHasElem(ctx context.Context, userID, field string, elem bson.M) (bool, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{"_id": userID, field: bson.M{"$elemMatch": elem}})
	if err != nil {
		return false, wrapStorage(err)
	}
	return n > 0, nil
}

func (s *Mongo) userPush(ctx context.Context, userID, field string, v any) error {
	_, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$push": bson.M{field: v}})
	return wrapStorage(err)
}

func (s *Mongo) userPull(ctx context.Context, userID, field string, elem bson.M) error {
	_, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$pull": bson.M{field: elem}})
	return wrapStorage(err)
}

// ---- friend list ----

func (s *Mongo) PushFriend(ctx context.Context, userID string, f model.FriendEntry) error {
	return s.userPush(ctx, userID, "friend_list", f)
}

func (s *Mongo) PullFriend(ctx context.Context, userID, friendID string) error {
	return s.userPull(ctx, userID, "friend_list", bson.M{"friend_id": friendID})
}

func (s *Mongo) SetFriendName(ctx context.Context, userID, friendID, friendName string) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID, "friend_list.friend_id": friendID},
		bson.M{"$set": bson.M{"friend_list.$.friend_name": friendName}},
	)
	return wrapStorage(err)
}

// ---- per-user chat list ----

func (s *Mongo) PrependChatEntry(ctx context.Context, userID string, e model.ChatEntry) error {
	_, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$push": bson.M{"chats": bson.M{"$each": bson.A{e}, "$position": 0}},
	})
	return wrapStorage(err)
}

func (s *Mongo) PullChatEntry(ctx context.Context, userID, chatID string) error {
	return s.userPull(ctx, userID, "chats", bson.M{"id": chatID})
}

// BumpChatEntry reads the current entry, then pulls and re-pushes it at the
// front with the bumped counter. Readers tolerate the race between the two
// writes; the read also repairs a missing entry.
func (s *Mongo) BumpChatEntry(ctx context.Context, userID, chatID, chatname string, incr int) error {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	entry := model.ChatEntry{ID: chatID, Chatname: chatname, Unreads: incr}
	for _, e := range u.Chats {
		if e.ID == chatID {
			entry = e
			entry.Unreads += incr
			break
		}
	}
	if err := s.PullChatEntry(ctx, userID, chatID); err != nil {
		return err
	}
	return s.PrependChatEntry(ctx, userID, entry)
}

func (s *Mongo) SetUnreads(ctx context.Context, userID, chatID string, n int) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID, "chats.id": chatID},
		bson.M{"$set": bson.M{"chats.$.unreads": n}},
	)
	return wrapStorage(err)
}

// ---- chats ----

func (s *Mongo) GetChat(ctx context.Context, id string) (*model.Chat, error) {
	var c model.Chat
	err := s.chats.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound.WrapMsg("chat", "id", id)
	}
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}
	return &c, nil
}

// FindChatByCredentials treats (chatname, password) as a credential pair: a
// chat without a password is never matched here.
func (s *Mongo) FindChatByCredentials(ctx context.Context, chatname, password string) (*model.Chat, error) {
	if password == "" {
		return nil, errs.ErrNotFound.WrapMsg("chat", "chatname", chatname)
	}
	var c model.Chat
	err := s.chats.FindOne(ctx, bson.M{"chatname": chatname, "password": password}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound.WrapMsg("chat", "chatname", chatname)
	}
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg(err.Error())
	}
	return &c, nil
}

func (s *Mongo) ChatnameTaken(ctx context.Context, chatname string) (bool, error) {
	n, err := s.chats.CountDocuments(ctx, bson.M{"chatname": chatname})
	if err != nil {
		return false, wrapStorage(err)
	}
	return n > 0, nil
}

func (s *Mongo) SearchPublicChats(ctx context.Context, prefix string, limit int) ([]*model.Chat, error) {
	filter := bson.M{
		"chatname":       primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)},
		"password":       bson.M{"$exists": false},
		"is_friend_chat": false,
	}
	opts := options.Find().SetLimit(int64(limit)).SetProjection(bson.M{"messages": 0})
	cur, err := s.chats.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapStorage(err)
	}
	defer cur.Close(ctx)

	var out []*model.Chat
	for cur.Next(ctx) {
		var c model.Chat
		if err := cur.Decode(&c); err != nil {
			return nil, errs.ErrStorage.WrapMsg(err.Error())
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (s *Mongo) InsertChat(ctx context.Context, c *model.Chat) error {
	_, err := s.chats.InsertOne(ctx, c)
	return wrapStorage(err)
}

func (s *Mongo) DeleteChat(ctx context.Context, id string) error {
	_, err := s.chats.DeleteOne(ctx, bson.M{"_id": id})
	return wrapStorage(err)
}

func (s *Mongo) AddMember(ctx context.Context, chatID string, m model.Member) error {
	_, err := s.chats.UpdateOne(ctx, bson.M{"_id": chatID}, bson.M{"$push": bson.M{"members": m}})
	return wrapStorage(err)
}

func (s *Mongo) RemoveMember(ctx context.Context, chatID, memberID string) error {
	_, err := s.chats.UpdateOne(ctx, bson.M{"_id": chatID}, bson.M{"$pull": bson.M{"members": bson.M{"id": memberID}}})
	return wrapStorage(err)
}

func (s *Mongo) SetMemberName(ctx context.Context, chatID, memberID, username string) error {
	_, err := s.chats.UpdateOne(ctx,
		bson.M{"_id": chatID, "members.id": memberID},
		bson.M{"$set": bson.M{"members.$.username": username}},
	)
	return wrapStorage(err)
}

func (s *Mongo) SetChatLanguages(ctx context.Context, chatID string, langs []string) error {
	_, err := s.chats.UpdateOne(ctx, bson.M{"_id": chatID}, bson.M{"$set": bson.M{"languages": langs}})
	return wrapStorage(err)
}

func (s *Mongo) AppendMessage(ctx context.Context, chatID string, msg model.ChatMessage) error {
	_, err := s.chats.UpdateOne(ctx, bson.M{"_id": chatID}, bson.M{"$push": bson.M{"messages": msg}})
	return wrapStorage(err)
}

func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	return errs.ErrStorage.WrapMsg(err.Error())
}
