package service

import (
	"context"

	"go.uber.org/zap"

	"linguachat/logger"
	"linguachat/module/chat/model"
	"linguachat/module/chat/store"
	"linguachat/service/bus"
	"linguachat/service/translate"
)

// Engine owns the invariants over User and Chat documents: chat language
// sets, member lists, the mailbox/outgoing-request pair, and per-user chat
// list ordering and unread counters. Every operation is one short-lived unit
// of work; multi-document effects are not transactional, read paths re-derive
// defensively so briefly inconsistent states converge.
type Engine struct {
	store      store.Store
	bus        bus.Bus
	translator translate.Translator
}

func NewEngine(s store.Store, b bus.Bus, t translate.Translator) *Engine {
	return &Engine{store: s, bus: b, translator: t}
}

// publish delivers an event best-effort: a bus failure after a committed
// mutation is logged, never reported back, since clients re-derive state on
// the next fetch anyway.
func (e *Engine) publish(ctx context.Context, channel, event string, data any) {
	if err := e.bus.Publish(ctx, channel, event, data); err != nil {
		logger.Warn("publish failed",
			zap.String("channel", channel),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

// recomputeLanguages re-reads every current member's stored language and
// rewrites the chat's language set from scratch. Used wherever a change can
// both add and remove codes (language change, leave).
func (e *Engine) recomputeLanguages(ctx context.Context, chatID string, members []model.Member) ([]string, error) {
	users, err := e.store.GetUsers(ctx, memberIDs(members))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]string, len(users))
	for _, u := range users {
		byID[u.ID] = u.Language
	}
	langs := model.LanguagesOf(members, func(id string) (string, bool) {
		lan, ok := byID[id]
		return lan, ok
	})
	if err := e.store.SetChatLanguages(ctx, chatID, langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// addLanguage grows the chat's language set when a joiner brings a new code.
// One join cannot shrink the set, so no full recompute is needed here.
func (e *Engine) addLanguage(ctx context.Context, chat *model.Chat, lan string) error {
	if lan == "" {
		return nil
	}
	for _, l := range chat.Languages {
		if l == lan {
			return nil
		}
	}
	chat.Languages = append(chat.Languages, lan)
	return e.store.SetChatLanguages(ctx, chat.ID, chat.Languages)
}

func memberIDs(members []model.Member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.ID)
	}
	return out
}
