// Package bot implements the quiz conversation: a state machine driven by
// text messages, with all state kept in a botstate.Persistence.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/numberbot/internal/botstate"
	"github.com/rcliao/numberbot/internal/model"
	"github.com/rcliao/numberbot/internal/persist"
	"github.com/rcliao/numberbot/internal/quiz"
)

// DefaultConversation is the conversation handler name used for state keys.
const DefaultConversation = "main"

// Menu is the keyboard offered in the choosing state.
var Menu = [][]string{
	{"guess number", "multi1"},
	{"multi2", "multi3"},
}

// Game choices as stored under "choice" in user data.
const (
	choiceGuess  = "guess_number"
	choiceMulti1 = "multi1"
	choiceMulti2 = "multi2"
	choiceMulti3 = "multi3"
)

var (
	guessPattern  = regexp.MustCompile(`^[0-9]{4}$`)
	answerPattern = regexp.MustCompile(`^[0-9 ]+`)
)

// Message is one incoming text from a user in a chat.
type Message struct {
	ChatID int64
	UserID int64
	Text   string
}

// Reply is one outgoing text. Keyboard, when set, lists the suggested answers.
type Reply struct {
	Text     string     `json:"text"`
	Keyboard [][]string `json:"keyboard,omitempty"`
}

// Option configures a Bot.
type Option func(*Bot)

// WithRand sets the source of questions and secrets.
func WithRand(rng *rand.Rand) Option {
	return func(b *Bot) {
		if rng != nil {
			b.rng = rng
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithConversation sets the conversation handler name.
func WithConversation(name string) Option {
	return func(b *Bot) {
		if name != "" {
			b.name = name
		}
	}
}

// Bot answers messages. Handle calls are serialized.
type Bot struct {
	state  *botstate.Persistence
	tables *quiz.Tables
	name   string
	logger *slog.Logger

	mu      sync.Mutex
	rng     *rand.Rand
	entropy *rand.Rand
}

// New creates a Bot storing its state in state and drawing questions from
// tables.
func New(state *botstate.Persistence, tables *quiz.Tables, opts ...Option) *Bot {
	seed := time.Now().UnixNano()
	b := &Bot{
		state:   state,
		tables:  tables,
		name:    DefaultConversation,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		rng:     rand.New(rand.NewSource(seed)),
		entropy: rand.New(rand.NewSource(seed + 1)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// turn is the outcome of one handled message.
type turn struct {
	replies []Reply
	next    model.State
}

func (t *turn) say(format string, args ...any) {
	t.replies = append(t.replies, Reply{Text: fmt.Sprintf(format, args...)})
}

// Handle processes one message and returns the replies to send. Messages
// that do not fit the current state, and messages from users with no running
// conversation other than /start, produce no replies.
func (b *Bot) Handle(ctx context.Context, msg Message) ([]Reply, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	text := strings.TrimSpace(msg.Text)
	key := model.NewConversationKey(msg.ChatID, msg.UserID)

	if text == "/start" {
		return b.commit(ctx, msg, key, nil, b.start())
	}

	current, ok, err := b.state.Conversations(b.name).Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load conversation %v: %w", key, err)
	}
	if !ok || current == nil {
		return nil, nil
	}

	data, err := b.state.UserData().GetOrCompute(ctx, msg.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user data %d: %w", msg.UserID, err)
	}

	if text == "Done" {
		t := b.done(data)
		return b.commit(ctx, msg, key, data, t)
	}

	var t *turn
	switch *current {
	case model.Choosing:
		switch text {
		case "guess number":
			t = b.guessNumber(ctx, data, text, false)
		case choiceMulti1:
			t = b.multi1(ctx, data, text, false)
		case choiceMulti2:
			t = b.multi2(ctx, data, text, false)
		case choiceMulti3:
			t = b.multi3(ctx, data, text, false)
		}
	case model.GuessNumber:
		if guessPattern.MatchString(text) {
			t = b.guessNumber(ctx, data, text, true)
		}
	case model.Multi1:
		if answerPattern.MatchString(text) {
			t = b.multi1(ctx, data, text, true)
		}
	case model.Multi2:
		if answerPattern.MatchString(text) {
			t = b.multi2(ctx, data, text, true)
		}
	case model.Multi3:
		if answerPattern.MatchString(text) {
			t = b.multi3(ctx, data, text, true)
		}
	}
	if t == nil {
		b.logger.DebugContext(ctx, "message ignored", "conversation", key.String(), "state", current.String())
		return nil, nil
	}
	return b.commit(ctx, msg, key, data, t)
}

// commit persists the user data and the next state, then returns the replies.
func (b *Bot) commit(ctx context.Context, msg Message, key model.ConversationKey, data *persist.StoredDict, t *turn) ([]Reply, error) {
	if data != nil {
		if err := b.state.UpdateUserData(ctx, msg.UserID, data); err != nil {
			return nil, fmt.Errorf("save user data %d: %w", msg.UserID, err)
		}
	}
	next := t.next
	if err := b.state.UpdateConversation(ctx, b.name, key, &next); err != nil {
		return nil, fmt.Errorf("save conversation %v: %w", key, err)
	}
	return t.replies, nil
}

func (b *Bot) start() *turn {
	return &turn{
		replies: []Reply{{
			Text:     "Hi! My name is number-bot. I offer you to play several useful games! Please, choose what game you prefer?",
			Keyboard: Menu,
		}},
		next: model.Choosing,
	}
}

func (b *Bot) done(data *persist.StoredDict) *turn {
	t := &turn{}
	switch data.GetString("choice") {
	case choiceMulti1, choiceMulti2, choiceMulti3:
		t.say("so, %s, right answer was %s\nIt was very nice to play with you",
			data.GetString("question"), data.GetString("right_answer"))
	case choiceGuess:
		t.say("Giving up? I was thinking of %s, shame we did not finish!", data.GetString("right_answer"))
	default:
		t.say("Bye bye!")
	}
	data.Clear()

	s := b.start()
	t.replies = append(t.replies, s.replies...)
	t.next = s.next
	return t
}

func (b *Bot) multi1(ctx context.Context, data *persist.StoredDict, answer string, answering bool) *turn {
	t := &turn{next: model.Multi1}
	if answering && data.GetString("choice") == choiceMulti1 {
		right := data.GetString("right_answer")
		if !quiz.CheckDrill(answer, right) {
			t.say("%s? wrong! %s = %s", strings.ToLower(answer), data.GetString("question"), right)
		}
	}

	d := quiz.Multi1(b.rng)
	data.Update(map[string]any{
		"choice":       choiceMulti1,
		"question":     d.Question,
		"right_answer": d.RightAnswer,
	})
	b.newRound(ctx, data)
	t.say("%s", d.Question)
	return t
}

func (b *Bot) multi2(ctx context.Context, data *persist.StoredDict, answer string, answering bool) *turn {
	t := &turn{next: model.Multi2}
	if answering && data.GetString("choice") == choiceMulti2 {
		pairs := quiz.DecodePairs(persist.Sanitize(lookup(data, "r")))
		if !quiz.CheckPairs(answer, pairs) {
			t.say("%s? wrong! %v = %s", answer, persist.Sanitize(lookup(data, "q")), data.GetString("right_answer"))
		}
	}

	f := b.tables.Multi2(b.rng)
	data.Update(map[string]any{
		"choice":       choiceMulti2,
		"q":            f.Product,
		"r":            f.Pairs,
		"question":     f.Question,
		"right_answer": f.RightAnswer,
	})
	b.newRound(ctx, data)
	t.say("%s", f.Question)
	return t
}

func (b *Bot) multi3(ctx context.Context, data *persist.StoredDict, answer string, answering bool) *turn {
	t := &turn{next: model.Multi3}
	if answering && data.GetString("choice") == choiceMulti3 {
		variants := quiz.DecodeVariants(persist.Sanitize(lookup(data, "answers")))
		if !quiz.CheckLines(answer, variants) {
			b.logger.InfoContext(ctx, "wrong answer", "answer", answer, "round", data.GetString("round"))
			t.say("%s? wrong! %s", strings.TrimSpace(answer), data.GetString("right_answer"))
		}
	}

	q := b.tables.Multi3(b.rng)
	data.Update(map[string]any{
		"choice":       choiceMulti3,
		"question":     q.Text,
		"right_answer": q.RightAnswer,
		"answers":      q.Answers,
	})
	b.newRound(ctx, data)
	t.say("%s", q.Text)
	return t
}

func (b *Bot) guessNumber(ctx context.Context, data *persist.StoredDict, guess string, answering bool) *turn {
	t := &turn{next: model.GuessNumber}
	if answering && data.GetString("choice") == choiceGuess {
		secret := data.GetString("right_answer")
		if guess != secret {
			if quiz.HasRepeats(guess) {
				t.say("My number has no repeated digits, try again")
				return t
			}
			matched, placed := quiz.Score(guess, secret)
			t.say("%d:%d", matched, placed)
			return t
		}
		data.Clear()
		t.say("Well done, you guessed it!\nI was thinking of %s", secret)
	}

	secret := quiz.NewSecret(b.rng)
	data.Update(map[string]any{
		"choice":       choiceGuess,
		"right_answer": secret,
	})
	b.newRound(ctx, data)
	t.say("Let's begin.\nGuess the number I am thinking of: %d distinct digits. "+
		"I will tell you how many of your digits are in my number, and how many of them are in the right place.", quiz.SecretLen)
	return t
}

// newRound tags the current question with a fresh round id.
func (b *Bot) newRound(ctx context.Context, data *persist.StoredDict) {
	round := ulid.MustNew(ulid.Timestamp(time.Now()), b.entropy).String()
	data.Set("round", round)
	b.logger.DebugContext(ctx, "new round", "round", round, "choice", data.GetString("choice"), "dict", data.ID())
}

func lookup(data *persist.StoredDict, key string) any {
	v, _ := data.Get(key)
	return v
}
