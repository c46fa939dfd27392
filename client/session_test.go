package client

import (
	"reflect"
	"testing"
)

func TestSessionJoinLeaveIdempotent(t *testing.T) {
	s := NewSession()
	s.JoinBoard("b1")
	s.JoinBoard("b1")
	s.JoinTeam("t1")
	if got := s.Rooms(); !reflect.DeepEqual(got, []string{"board-b1", "team-t1"}) {
		t.Fatalf("unexpected rooms: %v", got)
	}
	s.LeaveBoard("b1")
	s.LeaveBoard("b1")
	if got := s.Rooms(); !reflect.DeepEqual(got, []string{"team-t1"}) {
		t.Fatalf("unexpected rooms after leave: %v", got)
	}
	s.Join("")
	if got := s.Rooms(); !reflect.DeepEqual(got, []string{"team-t1"}) {
		t.Fatalf("empty room name must be ignored: %v", got)
	}
}

func TestSessionReconnectDemandsRefetch(t *testing.T) {
	s := NewSession()
	s.JoinBoard("b1")
	s.JoinTeam("t1")

	if !s.Connected() {
		t.Fatal("fresh session must be connected")
	}

	// No disconnect recorded: rejoin set is served but no refetch owed.
	rejoin, refetch := s.Reconnect()
	if refetch {
		t.Fatal("refetch must not be demanded without a disconnect")
	}
	if !reflect.DeepEqual(rejoin, []string{"board-b1", "team-t1"}) {
		t.Fatalf("unexpected rejoin set: %v", rejoin)
	}

	s.MarkDisconnected()
	if s.Connected() {
		t.Fatal("disconnect must be visible")
	}
	rejoin, refetch = s.Reconnect()
	if !refetch {
		t.Fatal("events missed while disconnected are gone; refetch is mandatory")
	}
	if !reflect.DeepEqual(rejoin, []string{"board-b1", "team-t1"}) {
		t.Fatalf("reconnect must rejoin all rooms: %v", rejoin)
	}
	if !s.Connected() {
		t.Fatal("reconnect must clear the disconnect flag")
	}

	// The refetch debt was settled; the next reconnect owes nothing.
	if _, refetch = s.Reconnect(); refetch {
		t.Fatal("refetch demanded twice for one disconnect")
	}
}
