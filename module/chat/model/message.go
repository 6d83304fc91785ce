package model

import "time"

// ChatMessage is one immutable entry of chat.messages. Variants holds one
// entry per distinct chat language at send time: the author's own language
// plus one translated entry per other language present in the chat.
type ChatMessage struct {
	ID        string    `bson:"id" json:"id"`
	Author    Author    `bson:"author" json:"author"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Variants  []Variant `bson:"message" json:"message"`
}

type Author struct {
	ID   string `bson:"author_id" json:"authorId"`
	Name string `bson:"author_name" json:"authorName"` // snapshot at send time
}

type Variant struct {
	Language string `bson:"language" json:"language"`
	Content  string `bson:"content" json:"content"`
}

// VariantFor picks the variant matching lan, falling back to the first one.
func (m *ChatMessage) VariantFor(lan string) Variant {
	for _, v := range m.Variants {
		if v.Language == lan {
			return v
		}
	}
	if len(m.Variants) > 0 {
		return m.Variants[0]
	}
	return Variant{}
}
