// Package model defines the types shared by the persistence layer, the
// conversation engine and the CLI.
package model

import "fmt"

// Namespaces used under the bot prefix.
const (
	BotDataNS       = "bot_data"
	UserDataNS      = "user_data"
	ChatDataNS      = "chat_data"
	ConversationsNS = "conversations"
)

// ConversationKey identifies one conversation as (chat id, user id).
// It is stored as the JSON array [chat, user].
type ConversationKey [2]int64

// NewConversationKey returns the key for a user in a chat.
func NewConversationKey(chatID, userID int64) ConversationKey {
	return ConversationKey{chatID, userID}
}

func (k ConversationKey) ChatID() int64 { return k[0] }
func (k ConversationKey) UserID() int64 { return k[1] }

func (k ConversationKey) String() string {
	return fmt.Sprintf("(%d, %d)", k[0], k[1])
}

// State is a conversation state. A conversation without a stored state, or
// whose stored state is null, is not running.
type State int

const (
	Choosing State = iota
	GuessNumber
	Multi1
	Multi2
	Multi3
)

func (s State) String() string {
	switch s {
	case Choosing:
		return "choosing"
	case GuessNumber:
		return "guess_number"
	case Multi1:
		return "multi1"
	case Multi2:
		return "multi2"
	case Multi3:
		return "multi3"
	}
	return fmt.Sprintf("state(%d)", int(s))
}
