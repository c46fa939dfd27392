package domain

import (
	"context"
	"fmt"
	"strings"
)

// SendMessage persists a new channel message and publishes a
// message-created event to the team's room. The sender snapshot and any
// reply snapshot are captured here, at send time, so later profile
// changes or deletion of the replied-to message cannot retroactively
// alter history.
func (s *MutationService) SendMessage(ctx context.Context, teamID string, draft MessageDraft, sender SenderSnapshot, idempotencyKey string) (*Message, error) {
	if strings.TrimSpace(draft.Content) == "" {
		return nil, fmt.Errorf("message content must not be empty: %w", ErrInvalidInput)
	}
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("load team %s: %w", teamID, err)
	}
	if team == nil {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	if !team.IsMember(sender.UserID) {
		return nil, fmt.Errorf("user %s in team %s: %w", sender.UserID, teamID, ErrForbidden)
	}

	channel := draft.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	if sender.Initials == "" {
		sender.Initials = Initials(sender.Name)
	}

	msg := Message{
		TeamID:    teamID,
		Channel:   channel,
		Content:   draft.Content,
		Sender:    sender,
		CreatedAt: s.clock.now(),
	}
	if draft.ReplyTo != "" {
		original, err := s.store.GetMessage(ctx, draft.ReplyTo)
		if err != nil {
			return nil, fmt.Errorf("load replied-to message %s: %w", draft.ReplyTo, err)
		}
		if original == nil {
			return nil, fmt.Errorf("replied-to message %s: %w", draft.ReplyTo, ErrNotFound)
		}
		if original.TeamID != teamID {
			return nil, fmt.Errorf("replied-to message %s is not in team %s: %w", draft.ReplyTo, teamID, ErrInvalidInput)
		}
		msg.ReplyTo = NewReplyRef(*original)
	}

	id, err := s.store.InsertMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	msg.ID = id

	// message-created delivers the message directly, not wrapped.
	s.publish(MessageCreated, TeamRoom(teamID), idempotencyKey, msg)
	return &msg, nil
}

// ListChannelMessages returns up to limit most recent messages of the
// channel in ascending creation order, for initial load and the forced
// refetch after a reconnect.
func (s *MutationService) ListChannelMessages(ctx context.Context, teamID, channel, actorID string, limit int) ([]Message, error) {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("load team %s: %w", teamID, err)
	}
	if team == nil {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	if !team.IsMember(actorID) {
		return nil, fmt.Errorf("user %s in team %s: %w", actorID, teamID, ErrForbidden)
	}
	if channel == "" {
		channel = DefaultChannel
	}
	msgs, err := s.store.ListMessages(ctx, teamID, channel, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages for team %s: %w", teamID, err)
	}
	return msgs, nil
}
