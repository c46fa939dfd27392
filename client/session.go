package client

import (
	"sort"
	"sync"

	"github.com/namansharma28/CollabBoard-sub000/domain"
)

// Session tracks which rooms a client connection has joined so a
// reconnect can rejoin all of them. Join and leave are idempotent and
// fire-and-forget; events missed while disconnected are unrecoverable
// from the bus, so every reconnect demands one authoritative refetch.
type Session struct {
	mu           sync.Mutex
	rooms        map[string]struct{}
	disconnected bool
}

// NewSession creates a connected session with no rooms joined.
func NewSession() *Session {
	return &Session{rooms: make(map[string]struct{})}
}

// JoinBoard subscribes the session to a board's room.
func (s *Session) JoinBoard(boardID string) { s.Join(domain.BoardRoom(boardID)) }

// LeaveBoard unsubscribes the session from a board's room.
func (s *Session) LeaveBoard(boardID string) { s.Leave(domain.BoardRoom(boardID)) }

// JoinTeam subscribes the session to a team's room.
func (s *Session) JoinTeam(teamID string) { s.Join(domain.TeamRoom(teamID)) }

// LeaveTeam unsubscribes the session from a team's room.
func (s *Session) LeaveTeam(teamID string) { s.Leave(domain.TeamRoom(teamID)) }

// Join adds a room. Idempotent.
func (s *Session) Join(room string) {
	if room == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room] = struct{}{}
}

// Leave removes a room. Idempotent.
func (s *Session) Leave(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, room)
}

// Rooms returns the joined rooms in sorted order.
func (s *Session) Rooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.rooms))
	for r := range s.rooms {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// MarkDisconnected records that the transport dropped.
func (s *Session) MarkDisconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnected = true
}

// Connected reports whether the session believes its transport is up.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.disconnected
}

// Reconnect returns the rooms to rejoin and whether an authoritative
// refetch is required. refetch is true exactly when a disconnect was
// recorded since the last reconnect: events missed in between are gone.
func (s *Session) Reconnect() (rejoin []string, refetch bool) {
	s.mu.Lock()
	refetch = s.disconnected
	s.disconnected = false
	s.mu.Unlock()
	return s.Rooms(), refetch
}
