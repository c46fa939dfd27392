// Package client holds the per-connection reconciliation logic that
// keeps a client's local view consistent with the server: optimistic
// inserts applied immediately on user action, merged later with the
// server-confirmed record from either the HTTP response or the bus
// echo, whichever arrives first, without duplication.
package client

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/namansharma28/CollabBoard-sub000/domain"
)

// DefaultFingerprintWindow is the tolerance applied when matching an
// optimistic record to a server echo by content fingerprint. It is a
// heuristic, not a guarantee; pass a different window to the view
// constructors when network latency conditions call for it. Exact
// matching uses the idempotency token echoed in the event envelope and
// never consults the window.
const DefaultFingerprintWindow = time.Second

// Fingerprint is the heuristic composite key used to match an
// optimistic record to its server echo when no idempotency token is
// available: same sender, same content, timestamps within the window.
type Fingerprint struct {
	Sender  string
	Content string
	At      time.Time
}

// Matches reports whether two fingerprints describe the same logical
// create within the tolerance window.
func (f Fingerprint) Matches(other Fingerprint, window time.Duration) bool {
	if f.Sender != other.Sender || f.Content != other.Content {
		return false
	}
	d := f.At.Sub(other.At)
	if d < 0 {
		d = -d
	}
	return d <= window
}

func tempID() string { return "tmp-" + uuid.NewString() }

// ChannelView is the local view of one team channel's messages. All
// methods assume the caller's single-threaded event loop; the view does
// no locking of its own.
//
// Events fan out at team-room granularity, so the view filters by team
// and channel itself: a message-created event for another channel of
// the same team is dropped, never absorbed.
type ChannelView struct {
	teamID  string
	channel string
	window  time.Duration
	notify  func(domain.Message)
	entries []messageEntry
}

// messageEntry is one row of the view. tempID is set while the row is
// an optimistic placeholder and cleared the instant it is confirmed.
type messageEntry struct {
	msg    domain.Message
	tempID string
	token  string
	fp     Fingerprint
}

// NewChannelView creates an empty view of one channel of one team. An
// empty channel selects domain.DefaultChannel; window <= 0 selects
// DefaultFingerprintWindow; notify, when non-nil, is invoked for
// messages that genuinely arrived from another collaborator (never for
// this client's own echoes).
func NewChannelView(teamID, channel string, window time.Duration, notify func(domain.Message)) *ChannelView {
	if channel == "" {
		channel = domain.DefaultChannel
	}
	if window <= 0 {
		window = DefaultFingerprintWindow
	}
	return &ChannelView{teamID: teamID, channel: channel, window: window, notify: notify}
}

// Send inserts an optimistic message immediately and returns the
// temporary identifier the caller uses to confirm or reject it once the
// network call resolves. token is the idempotency token attached to the
// mutation request.
func (v *ChannelView) Send(sender domain.SenderSnapshot, content, token string, now time.Time) string {
	id := tempID()
	v.entries = append(v.entries, messageEntry{
		msg: domain.Message{
			ID:        id,
			TeamID:    v.teamID,
			Channel:   v.channel,
			Content:   content,
			Sender:    sender,
			CreatedAt: now,
		},
		tempID: id,
		token:  token,
		fp:     Fingerprint{Sender: sender.UserID, Content: content, At: now},
	})
	return id
}

// ConfirmSend replaces the optimistic record with the server-confirmed
// message (HTTP response path). When the bus echo already merged the
// record, this is a no-op: whichever match fires first wins.
func (v *ChannelView) ConfirmSend(tempID string, confirmed domain.Message) {
	for i := range v.entries {
		if v.entries[i].tempID == tempID {
			v.entries[i] = messageEntry{msg: confirmed}
			return
		}
	}
	// Already merged via the event path, or rejected; either way the
	// confirmed id must not appear twice.
	if v.indexByID(confirmed.ID) >= 0 {
		return
	}
	v.insertOrdered(messageEntry{msg: confirmed})
}

// RejectSend rolls back an optimistic insert after a failed mutation.
// The user retries manually; the view never resends on its own.
func (v *ChannelView) RejectSend(tempID string) {
	for i := range v.entries {
		if v.entries[i].tempID == tempID {
			v.entries = append(v.entries[:i], v.entries[i+1:]...)
			return
		}
	}
}

// ApplyEvent merges a bus event into the view. Matching precedence:
// canonical identifier, then idempotency token, then content
// fingerprint; only when all three miss is the message genuinely new
// from another collaborator and appended in stable creation order.
// Applying the same event twice yields the same view as applying it
// once.
func (v *ChannelView) ApplyEvent(ev domain.Event) error {
	if ev.Name != domain.MessageCreated {
		return nil
	}
	var msg domain.Message
	if err := sonic.Unmarshal(ev.Data, &msg); err != nil {
		return err
	}
	// The team room carries every channel of the team; only this view's
	// channel may land here, or the next refetch would erase the row.
	if msg.TeamID != v.teamID || msg.Channel != v.channel {
		return nil
	}

	if i := v.indexByID(msg.ID); i >= 0 {
		v.entries[i] = messageEntry{msg: msg}
		return nil
	}
	if i := v.matchPending(ev.IdempotencyKey, Fingerprint{Sender: msg.Sender.UserID, Content: msg.Content, At: msg.CreatedAt}); i >= 0 {
		v.entries[i] = messageEntry{msg: msg}
		return nil
	}
	v.insertOrdered(messageEntry{msg: msg})
	if v.notify != nil {
		v.notify(msg)
	}
	return nil
}

// Reset replaces the view with an authoritative server snapshot (the
// forced refetch after a reconnect). Optimistic records still in flight
// are discarded; their results, if any, arrive as ordinary events.
func (v *ChannelView) Reset(msgs []domain.Message) {
	v.entries = v.entries[:0]
	for _, m := range msgs {
		v.entries = append(v.entries, messageEntry{msg: m})
	}
}

// Messages returns the current view in stable order.
func (v *ChannelView) Messages() []domain.Message {
	out := make([]domain.Message, len(v.entries))
	for i, e := range v.entries {
		out[i] = e.msg
	}
	return out
}

// Pending reports how many optimistic records await confirmation.
func (v *ChannelView) Pending() int {
	n := 0
	for _, e := range v.entries {
		if e.tempID != "" {
			n++
		}
	}
	return n
}

func (v *ChannelView) indexByID(id string) int {
	for i := range v.entries {
		if v.entries[i].msg.ID == id {
			return i
		}
	}
	return -1
}

func (v *ChannelView) matchPending(token string, fp Fingerprint) int {
	if token != "" {
		for i := range v.entries {
			if v.entries[i].tempID != "" && v.entries[i].token == token {
				return i
			}
		}
	}
	for i := range v.entries {
		if v.entries[i].tempID != "" && v.entries[i].fp.Matches(fp, v.window) {
			return i
		}
	}
	return -1
}

// insertOrdered places e by ascending creation timestamp, after any
// existing entries with the same timestamp so arrival order breaks
// ties.
func (v *ChannelView) insertOrdered(e messageEntry) {
	at := len(v.entries)
	for i := range v.entries {
		if v.entries[i].msg.CreatedAt.After(e.msg.CreatedAt) {
			at = i
			break
		}
	}
	v.entries = append(v.entries, messageEntry{})
	copy(v.entries[at+1:], v.entries[at:])
	v.entries[at] = e
}
