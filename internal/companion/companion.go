// Package companion is the boundary to the conversational companion. The
// reply generator sits behind Replier; Canned is the built-in fallback.
package companion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rcliao/cycle-journal/internal/model"
)

// ErrEmptyMessage is returned for blank user messages.
var ErrEmptyMessage = errors.New("message is required")

// HistoryLimit is how many prior messages accompany a request.
const HistoryLimit = 5

// Greeting opens a conversation with no history.
const Greeting = "Hi, I am Sakhi. How are you feeling today?"

// Role identifies the speaker of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleCompanion Role = "sakhi"
)

// Message is one turn of the conversation.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Context is what the companion may know about today.
type Context struct {
	Mood          string `json:"mood,omitempty"`
	Reflection    string `json:"reflection,omitempty"`
	BreathingDone bool   `json:"breathing_done"`
}

// ContextOf summarizes a day record. The reflection is the latest journal
// entry.
func ContextOf(d *model.DayMemory) Context {
	var c Context
	if d == nil {
		return c
	}
	if d.Mood != nil {
		c.Mood = d.Mood.Value
	}
	if n := len(d.Journal); n > 0 {
		c.Reflection = d.Journal[n-1].Text
	}
	c.BreathingDone = len(d.Breathing) > 0
	return c
}

// Exchange renders one user message and its reply as a chat highlight.
func Exchange(message, reply string) string {
	return fmt.Sprintf("%s: %s\n%s: %s", RoleUser, message, RoleCompanion, reply)
}

// HistoryOf turns a day's chat highlights back into conversation turns,
// oldest first. Highlight lines without a role prefix count as the user's.
func HistoryOf(d *model.DayMemory) []Message {
	if d == nil {
		return nil
	}
	var out []Message
	for _, h := range d.ChatHighlights {
		for _, line := range strings.Split(h.Text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			m := Message{Role: RoleUser, Text: line}
			for _, r := range []Role{RoleUser, RoleCompanion} {
				if rest, ok := strings.CutPrefix(line, string(r)+": "); ok {
					m = Message{Role: r, Text: rest}
					break
				}
			}
			out = append(out, m)
		}
	}
	return out
}

// Request is sent to a Replier.
type Request struct {
	Message string      `json:"message"`
	Phase   model.Phase `json:"phase"`
	History []Message   `json:"history,omitempty"`
	Context Context     `json:"context"`
}

// NewRequest trims message and keeps the last HistoryLimit turns.
func NewRequest(message string, phase model.Phase, history []Message, c Context) (Request, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Request{}, ErrEmptyMessage
	}
	if len(history) > HistoryLimit {
		history = history[len(history)-HistoryLimit:]
	}
	return Request{Message: message, Phase: phase, History: history, Context: c}, nil
}

// Response is the companion's answer.
type Response struct {
	Reply string `json:"reply"`
}

// Replier produces companion replies.
type Replier interface {
	Reply(ctx context.Context, req Request) (Response, error)
}

// Canned answers every message with a fixed phase-aware line.
type Canned struct{}

var _ Replier = Canned{}

func (Canned) Reply(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	return Response{
		Reply: fmt.Sprintf("I hear you. Moving through the %s phase can shape how emotions feel. Tell me more.", req.Phase),
	}, nil
}
