package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultChannel is used when a message names no channel.
const DefaultChannel = "general"

const replySnippetMaxRunes = 80

// SenderSnapshot captures who sent a message at send time. It is a
// copy, never a live reference: later profile changes do not alter
// messages already sent.
type SenderSnapshot struct {
	UserID   string `bson:"userId" json:"userId"`
	Name     string `bson:"name" json:"name"`
	Avatar   string `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Initials string `bson:"initials,omitempty" json:"initials,omitempty"`
}

// ReplyRef snapshots the replied-to message at reply time. It never
// changes afterwards, even if the original message is deleted.
type ReplyRef struct {
	MessageID  string `bson:"messageId" json:"messageId"`
	SenderName string `bson:"senderName" json:"senderName"`
	Snippet    string `bson:"snippet" json:"snippet"`
}

// Message is one chat entry in a team channel. Messages are immutable
// once created; there is no edit operation.
type Message struct {
	ID        string         `bson:"_id,omitempty" json:"id"`
	TeamID    string         `bson:"teamId" json:"teamId"`
	Channel   string         `bson:"channel" json:"channel"`
	Content   string         `bson:"content" json:"content"`
	Sender    SenderSnapshot `bson:"sender" json:"sender"`
	ReplyTo   *ReplyRef      `bson:"replyTo,omitempty" json:"replyTo,omitempty"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
}

// MessageDraft carries the caller-supplied fields of a new message.
// ReplyTo names the replied-to message by id; the service resolves it
// into a ReplyRef snapshot.
type MessageDraft struct {
	Content string `json:"content"`
	Channel string `json:"channel,omitempty"`
	ReplyTo string `json:"replyTo,omitempty"`
}

// NewReplyRef snapshots m for embedding into a reply.
func NewReplyRef(m Message) *ReplyRef {
	return &ReplyRef{
		MessageID:  m.ID,
		SenderName: m.Sender.Name,
		Snippet:    snippet(m.Content),
	}
}

func snippet(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= replySnippetMaxRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:replySnippetMaxRunes]) + "…"
}

// Initials derives a short uppercase abbreviation from a display name,
// e.g. "Ada Lovelace" -> "AL".
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range fields {
		if i == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(f)
		b.WriteString(strings.ToUpper(string(r)))
	}
	return b.String()
}
