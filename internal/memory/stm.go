package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultWindow is the number of turns a conversation retains.
const DefaultWindow = 20

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// Entry is one stored chat turn. Raw carries the stored text verbatim when it
// could not be decoded as an entry.
type Entry struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Raw       string `json:"raw,omitempty"`
}

// ConversationKey identifies one (patient, counterpart, conversation) window.
type ConversationKey struct {
	PatientID      string
	CounterpartID  string
	ConversationID string
}

func (k ConversationKey) String() string {
	return fmt.Sprintf("stm:%s:%s:%s", k.PatientID, k.CounterpartID, k.ConversationID)
}

type ShortTermConfig struct {
	// Window caps retained entries per conversation; DefaultWindow when <= 0.
	Window int
	// TTL, when positive, refreshes an expiry on the conversation after each add.
	TTL    time.Duration
	Logger zerolog.Logger
}

// ShortTerm keeps a bounded, oldest-first window of recent turns per conversation.
type ShortTerm struct {
	backend Backend
	window  int64
	ttl     time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

func NewShortTerm(backend Backend, cfg ShortTermConfig) *ShortTerm {
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}
	return &ShortTerm{
		backend: backend,
		window:  int64(window),
		ttl:     cfg.TTL,
		log:     cfg.Logger,
		now:     time.Now,
	}
}

func (s *ShortTerm) Window() int { return int(s.window) }

func (s *ShortTerm) Key(patientID, counterpartID, conversationID string) string {
	return ConversationKey{PatientID: patientID, CounterpartID: counterpartID, ConversationID: conversationID}.String()
}

// Add appends a turn and trims the conversation back to the window.
func (s *ShortTerm) Add(ctx context.Context, patientID, counterpartID, conversationID string, role Role, content string) error {
	key := s.Key(patientID, counterpartID, conversationID)
	entry := Entry{
		Role:      role,
		Content:   content,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.backend.Append(ctx, key, Encode(entry)); err != nil {
		return fmt.Errorf("stm add: %w", err)
	}
	if err := s.backend.Trim(ctx, key, -s.window, -1); err != nil {
		return fmt.Errorf("stm trim: %w", err)
	}
	if s.ttl > 0 {
		if err := s.backend.Expire(ctx, key, s.ttl); err != nil {
			return fmt.Errorf("stm expire: %w", err)
		}
	}
	return nil
}

// History returns the retained turns oldest first.
func (s *ShortTerm) History(ctx context.Context, patientID, counterpartID, conversationID string) ([]Entry, error) {
	key := s.Key(patientID, counterpartID, conversationID)
	items, err := s.backend.Range(ctx, key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("stm history: %w", err)
	}
	out := make([]Entry, 0, len(items))
	for _, item := range items {
		entry, ok := decodeEntry(item)
		if !ok {
			s.log.Debug().Str("key", key).Msg("stm entry not decodable, returning raw text")
		}
		out = append(out, entry)
	}
	return out, nil
}

// LastUserQuestion returns the content of the most recent user turn.
func (s *ShortTerm) LastUserQuestion(ctx context.Context, patientID, counterpartID, conversationID string) (string, bool, error) {
	history, err := s.History(ctx, patientID, counterpartID, conversationID)
	if err != nil {
		return "", false, err
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			return history[i].Content, true, nil
		}
	}
	return "", false, nil
}

// Clear drops the whole conversation.
func (s *ShortTerm) Clear(ctx context.Context, patientID, counterpartID, conversationID string) error {
	if err := s.backend.Delete(ctx, s.Key(patientID, counterpartID, conversationID)); err != nil {
		return fmt.Errorf("stm clear: %w", err)
	}
	return nil
}

func decodeEntry(text string) (Entry, bool) {
	obj, ok := Decode(text).(map[string]any)
	if !ok {
		return Entry{Raw: text}, false
	}
	role, _ := obj["role"].(string)
	content, _ := obj["content"].(string)
	ts, _ := obj["timestamp"].(string)
	return Entry{Role: Role(role), Content: content, Timestamp: ts}, true
}
