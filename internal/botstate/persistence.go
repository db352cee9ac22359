// Package botstate persists a bot's user, chat, bot-wide and conversation
// state in a key-value backend.
//
// Keys are laid out as
//
//	bot_<id>:bot_data                     one JSON object
//	bot_<id>:user_data:<user id>          one JSON object per user
//	bot_<id>:chat_data:<chat id>          one JSON object per chat
//	bot_<id>:conversations:<name>:[c,u]   one state per conversation
//
// The "bot_<id>:" prefix is omitted when no bot id is configured.
package botstate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rcliao/numberbot/internal/model"
	"github.com/rcliao/numberbot/internal/persist"
	"github.com/rcliao/numberbot/internal/store"
)

// Conversation holds the state of every conversation of one handler.
// A stored nil state marks a conversation that has ended.
type Conversation = persist.SimpleStore[model.ConversationKey, *model.State]

// Option configures a Persistence.
type Option func(*Persistence)

// WithLogger sets the logger passed to every namespace.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Persistence) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// StoreUserData controls whether Flush writes user data. Default true.
func StoreUserData(on bool) Option { return func(p *Persistence) { p.storeUser = on } }

// StoreChatData controls whether Flush writes chat data. Default true.
func StoreChatData(on bool) Option { return func(p *Persistence) { p.storeChat = on } }

// StoreBotData controls whether Flush writes bot data. Default true.
func StoreBotData(on bool) Option { return func(p *Persistence) { p.storeBot = on } }

// Persistence is the bot's view of its stored state.
type Persistence struct {
	backend   store.Backend
	prefix    string
	logger    *slog.Logger
	storeUser bool
	storeChat bool
	storeBot  bool

	userData *persist.DictStore[int64]
	chatData *persist.DictStore[int64]

	mu            sync.Mutex
	botData       *persist.StoredDict
	conversations map[string]*Conversation
}

// KeyPrefix returns the prefix of every key owned by the bot botID.
func KeyPrefix(botID string) string {
	if botID == "" {
		return ""
	}
	return "bot_" + botID + ":"
}

// Open creates a Persistence over backend and loads the bot-wide data.
// The backend stays owned by the caller.
func Open(ctx context.Context, backend store.Backend, botID string, opts ...Option) (*Persistence, error) {
	p := &Persistence{
		backend:       backend,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		storeUser:     true,
		storeChat:     true,
		storeBot:      true,
		conversations: make(map[string]*Conversation),
	}
	p.prefix = KeyPrefix(botID)
	for _, opt := range opts {
		opt(p)
	}

	p.userData = persist.NewDictStore(backend, persist.Config[int64, *persist.StoredDict]{
		Namespace: p.prefix + model.UserDataNS,
		Keys:      persist.IntKeys[int64]{},
		Logger:    p.logger,
	})
	p.chatData = persist.NewDictStore(backend, persist.Config[int64, *persist.StoredDict]{
		Namespace: p.prefix + model.ChatDataNS,
		Keys:      persist.IntKeys[int64]{},
		Logger:    p.logger,
	})

	botData, err := persist.OpenStoredDict(ctx, backend, p.prefix+model.BotDataNS)
	if err != nil {
		return nil, fmt.Errorf("load bot data: %w", err)
	}
	p.botData = botData
	return p, nil
}

// Prefix returns the key prefix shared by every namespace of this bot.
func (p *Persistence) Prefix() string { return p.prefix }

// Backend returns the shared backend.
func (p *Persistence) Backend() store.Backend { return p.backend }

func (p *Persistence) UserData() *persist.DictStore[int64] { return p.userData }
func (p *Persistence) ChatData() *persist.DictStore[int64] { return p.chatData }

func (p *Persistence) BotData() *persist.StoredDict {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.botData
}

// Conversations returns the state store for the named conversation handler,
// creating it on first use.
func (p *Persistence) Conversations(name string) *Conversation {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.conversations[name]; ok {
		return c
	}
	c := persist.NewSimpleStore(p.backend, persist.Config[model.ConversationKey, *model.State]{
		Namespace: p.prefix + model.ConversationsNS + ":" + name,
		Logger:    p.logger,
	})
	p.conversations[name] = c
	return c
}

// UpdateConversation stores the new state of one conversation. A nil state
// ends the conversation.
func (p *Persistence) UpdateConversation(ctx context.Context, name string, key model.ConversationKey, state *model.State) error {
	return p.Conversations(name).Set(ctx, key, state)
}

// UpdateUserData persists data for userID. A *persist.StoredDict is flushed
// in place; a map replaces the stored object.
func (p *Persistence) UpdateUserData(ctx context.Context, userID int64, data any) error {
	return updateDict(ctx, p.userData, userID, data)
}

// UpdateChatData is UpdateUserData for chats.
func (p *Persistence) UpdateChatData(ctx context.Context, chatID int64, data any) error {
	return updateDict(ctx, p.chatData, chatID, data)
}

// UpdateBotData persists the bot-wide data. A map replaces the current
// contents and is written immediately.
func (p *Persistence) UpdateBotData(ctx context.Context, data any) error {
	if d, ok := data.(*persist.StoredDict); ok {
		return d.Flush(ctx)
	}
	obj, ok := persist.Sanitize(data).(map[string]any)
	if !ok {
		return fmt.Errorf("bot data: %w: value must be a map, not %T", persist.ErrTypeMismatch, data)
	}

	d := persist.NewStoredDict(p.backend, p.prefix+model.BotDataNS, obj)
	if err := d.Flush(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	p.botData = d
	p.mu.Unlock()
	return nil
}

// Flush writes every deferred change: user, chat and bot data as enabled,
// then the conversation stores.
func (p *Persistence) Flush(ctx context.Context) error {
	var errs []error
	if p.storeUser {
		errs = append(errs, p.userData.Flush(ctx))
	}
	if p.storeChat {
		errs = append(errs, p.chatData.Flush(ctx))
	}
	if p.storeBot {
		errs = append(errs, p.BotData().Flush(ctx))
	}

	p.mu.Lock()
	convs := make([]*Conversation, 0, len(p.conversations))
	for _, c := range p.conversations {
		convs = append(convs, c)
	}
	p.mu.Unlock()
	for _, c := range convs {
		errs = append(errs, c.Flush(ctx))
	}

	if err := errors.Join(errs...); err != nil {
		p.logger.ErrorContext(ctx, "flush failed", "prefix", p.prefix, "error", err)
		return err
	}
	return nil
}

func updateDict(ctx context.Context, s *persist.DictStore[int64], id int64, data any) error {
	if d, ok := data.(*persist.StoredDict); ok {
		want, err := s.ComposeKey(id)
		if err != nil {
			return err
		}
		if d.ID() == want {
			return d.Flush(ctx)
		}
	}
	return s.SetAny(ctx, id, data)
}
