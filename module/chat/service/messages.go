package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"linguachat/logger"
	"linguachat/module/chat/model"
	"linguachat/service/bus"
	"linguachat/tools/errs"
	"linguachat/tools/ids"
)

// SendMessage appends a message with one variant per chat language and fans
// the update out to every member's chat list. Translation happens before any
// persistence; if it fails nothing is written. Per-member updates are
// independent: one member's failure is logged and does not block the rest.
func (e *Engine) SendMessage(ctx context.Context, chatID, authorID, content string) (*model.ChatMessage, error) {
	if content == "" {
		return nil, errs.ErrArgs.WrapMsg("empty message")
	}
	author, err := e.store.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	chat, err := e.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(authorID) {
		return nil, errs.ErrArgs.WrapMsg("author is not a member", "chat", chatID)
	}

	variants, err := e.composeVariants(ctx, chat, author.Language, content)
	if err != nil {
		return nil, err
	}

	msg := model.ChatMessage{
		ID:        ids.GenerateString(),
		Author:    model.Author{ID: authorID, Name: author.Username},
		Timestamp: time.Now(),
		Variants:  variants,
	}
	if err := e.store.AppendMessage(ctx, chatID, msg); err != nil {
		return nil, err
	}

	e.fanOutMessage(ctx, chat, authorID)

	e.publish(ctx, bus.ChatChannel(chatID), bus.EvtNewMessage, msg)
	return &msg, nil
}

// composeVariants builds the author's own entry plus one translated entry per
// OTHER chat language. A single-language chat never calls the translator.
func (e *Engine) composeVariants(ctx context.Context, chat *model.Chat, authorLan, content string) ([]model.Variant, error) {
	if authorLan == "" && len(chat.Languages) > 0 {
		authorLan = chat.Languages[0]
	}
	variants := []model.Variant{{Language: authorLan, Content: content}}
	if len(chat.Languages) <= 1 {
		return variants, nil
	}

	targets := make([]string, 0, len(chat.Languages)-1)
	for _, lan := range chat.Languages {
		if lan != authorLan {
			targets = append(targets, lan)
		}
	}
	if len(targets) == 0 {
		return variants, nil
	}

	translated, err := e.translator.Translate(ctx, content, authorLan, targets)
	if err != nil {
		return nil, err
	}
	for _, lan := range targets {
		text, ok := translated[lan]
		if !ok {
			return nil, errs.ErrTranslation.WrapMsg("missing target", "language", lan)
		}
		variants = append(variants, model.Variant{Language: lan, Content: text})
	}
	return variants, nil
}

// fanOutMessage moves the chat to the front of every member's list, bumps
// unread counters for everyone but the author, and pings each member's
// personal channel so chat-list UIs reorder even when the chat is not open.
func (e *Engine) fanOutMessage(ctx context.Context, chat *model.Chat, authorID string) {
	var wg sync.WaitGroup
	for _, m := range chat.Members {
		m := m
		wg.Add(1)
		go func() {
			defer wg.Done()
			incr := 1
			if m.ID == authorID {
				incr = 0
			}
			if err := e.store.BumpChatEntry(ctx, m.ID, chat.ID, chat.Chatname, incr); err != nil {
				logger.Warn("chat entry bump failed",
					zap.String("user", m.ID),
					zap.String("chat", chat.ID),
					zap.Error(err),
				)
			}
			e.publish(ctx, bus.UserChannel(m.ID), bus.EvtChatNewMessage, bus.ChatNewMessage{
				ChatID:   chat.ID,
				Chatname: chat.DisplayNameFor(m.ID),
			})
		}()
	}
	wg.Wait()
}

// MarkRead zeroes the unread counter of one chat entry. Idempotent.
func (e *Engine) MarkRead(ctx context.Context, userID, chatID string) error {
	return e.store.SetUnreads(ctx, userID, chatID, 0)
}
