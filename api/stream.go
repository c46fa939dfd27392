package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/namansharma28/CollabBoard-sub000/bus"
	"github.com/namansharma28/CollabBoard-sub000/domain"
)

const (
	maxStreamRooms    = 16
	subscriberBuffer  = 64
	keepaliveInterval = 30 * time.Second
	boardRoomPrefix   = "board-"
	teamRoomPrefix    = "team-"
)

// streamEvents serves the SSE event stream. The client names the rooms
// it wants to join via ?rooms=board-<id>,team-<id>; each is checked
// against team membership before subscribing. Leaving happens by
// closing the stream; rejoining after a reconnect opens a new one, and
// the client must follow it with an authoritative refetch since events
// missed while disconnected are gone.
func streamEvents(store domain.Store, auth Authenticator, broker *bus.Broker, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		// EventSource cannot set headers, so the token may ride along as
		// a query parameter.
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			if token := c.QueryParam("token"); token != "" {
				authHeader = "Bearer " + token
			}
		}
		userID, err := auth.UserIDFromAuthHeader(authHeader)
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		rooms, err := splitRooms(c.QueryParam("rooms"))
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		ctx := c.Request().Context()
		for _, room := range rooms {
			if err := authorizeRoom(ctx, store, room, userID); err != nil {
				return writeDomainError(c, logger, err)
			}
		}

		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
		c.Response().Header().Set("X-Accel-Buffering", "no")
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}

		sub := bus.NewSubscriber(subscriberBuffer)
		for _, room := range rooms {
			broker.Subscribe(sub, room)
		}
		defer broker.UnsubscribeAll(sub)

		// Initial comment flushes headers to the client.
		if _, err := c.Response().Write([]byte(":ok\n\n")); err != nil {
			return nil
		}
		flusher.Flush()

		ticker := time.NewTicker(keepaliveInterval)
		defer ticker.Stop()
		for {
			select {
			case ev := <-sub.Events():
				data, err := sonic.Marshal(ev)
				if err != nil {
					logger.Errorf("marshal event: %v", err)
					continue
				}
				if _, err := c.Response().Write([]byte("data: ")); err != nil {
					return nil
				}
				if _, err := c.Response().Write(data); err != nil {
					return nil
				}
				if _, err := c.Response().Write([]byte("\n\n")); err != nil {
					return nil
				}
				flusher.Flush()
			case <-ticker.C:
				if _, err := c.Response().Write([]byte(":keepalive\n\n")); err != nil {
					return nil
				}
				flusher.Flush()
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func splitRooms(raw string) ([]string, error) {
	rooms := []string{}
	for _, r := range strings.Split(raw, ",") {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		rooms = append(rooms, r)
	}
	if len(rooms) == 0 {
		return nil, fmt.Errorf("missing rooms parameter")
	}
	if len(rooms) > maxStreamRooms {
		return nil, fmt.Errorf("at most %d rooms per stream", maxStreamRooms)
	}
	return rooms, nil
}

// authorizeRoom resolves the room name back to its entity and checks
// that the user is a member of the owning team.
func authorizeRoom(ctx context.Context, store domain.Store, room, userID string) error {
	switch {
	case strings.HasPrefix(room, boardRoomPrefix):
		boardID := strings.TrimPrefix(room, boardRoomPrefix)
		board, err := store.GetBoard(ctx, boardID)
		if err != nil {
			return err
		}
		if board == nil {
			return fmt.Errorf("board %s: %w", boardID, domain.ErrNotFound)
		}
		return checkTeamMembership(ctx, store, board.TeamID, userID)
	case strings.HasPrefix(room, teamRoomPrefix):
		teamID := strings.TrimPrefix(room, teamRoomPrefix)
		return checkTeamMembership(ctx, store, teamID, userID)
	}
	return fmt.Errorf("unknown room %q: %w", room, domain.ErrInvalidInput)
}

func checkTeamMembership(ctx context.Context, store domain.Store, teamID, userID string) error {
	team, err := store.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team == nil {
		return fmt.Errorf("team %s: %w", teamID, domain.ErrNotFound)
	}
	if !team.IsMember(userID) {
		return fmt.Errorf("user %s is not a member of team %s: %w", userID, teamID, domain.ErrForbidden)
	}
	return nil
}
