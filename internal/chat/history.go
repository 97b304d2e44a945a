package chat

import (
	"time"

	"github.com/HendryAvila/moodmate/internal/docstore"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HistoryKey = "adhd-chat-messages"

	// MaxHistory is how many messages are kept on disk.
	MaxHistory = 100
)

// Roles of a chat message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Message is one stored chat message.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Mood      mood.Mood `json:"mood,omitempty"`
	Fallback  bool      `json:"fallback,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (m Message) GetID() string { return m.ID }

// History is the persisted conversation, capped at MaxHistory.
type History struct {
	msgs *docstore.Collection[Message]
}

// NewHistory loads the conversation from kv.
func NewHistory(kv kvstore.Store, log *zap.Logger) *History {
	return &History{msgs: docstore.NewCollection[Message](kv, HistoryKey, log)}
}

// Append stores messages, dropping the oldest beyond MaxHistory.
func (h *History) Append(msgs ...Message) {
	msgs = append([]Message(nil), msgs...)
	for i := range msgs {
		if msgs[i].ID == "" {
			msgs[i].ID = uuid.NewString()
		}
		if msgs[i].Timestamp.IsZero() {
			msgs[i].Timestamp = timeNow().UTC()
		}
	}
	h.msgs.Mutate(func(all []Message) []Message {
		all = append(all, msgs...)
		if len(all) > MaxHistory {
			all = all[len(all)-MaxHistory:]
		}
		return all
	})
}

// Recent returns the last n messages, oldest first. n <= 0 returns all.
func (h *History) Recent(n int) []Message {
	all := h.msgs.List()
	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

// Clear removes every message.
func (h *History) Clear() { h.msgs.Replace(nil) }
