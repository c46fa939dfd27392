package domain

// Room naming is purely convention: a room is a string key addressing a
// multicast group on the bus, nothing more. The router is a pure
// function from entity to room name and keeps no state.

// BoardRoom names the room joined by one board's viewers.
func BoardRoom(boardID string) string { return "board-" + boardID }

// TeamRoom names the room joined by one team's channel viewers.
func TeamRoom(teamID string) string { return "team-" + teamID }
