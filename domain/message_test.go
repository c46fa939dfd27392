package domain

import (
	"strings"
	"testing"
)

func TestInitials(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Ada Lovelace", "AL"},
		{"ada lovelace", "AL"},
		{"Prism", "P"},
		{"Anna Maria van Schurman", "AM"},
		{"  ", ""},
		{"", ""},
		{"Ólafur Arnalds", "ÓA"},
	}
	for _, tc := range cases {
		if got := Initials(tc.name); got != tc.want {
			t.Fatalf("Initials(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestNewReplyRefShortContentKeptWhole(t *testing.T) {
	m := Message{ID: "m1", Content: "  short note  ", Sender: SenderSnapshot{Name: "Ada"}}
	ref := NewReplyRef(m)
	if ref.Snippet != "short note" {
		t.Fatalf("expected trimmed content, got %q", ref.Snippet)
	}
	if ref.MessageID != "m1" || ref.SenderName != "Ada" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
}

func TestNewReplyRefTruncatesByRunes(t *testing.T) {
	content := strings.Repeat("ü", 100)
	ref := NewReplyRef(Message{Content: content})
	runes := []rune(ref.Snippet)
	if len(runes) != 81 {
		t.Fatalf("expected 81 runes, got %d", len(runes))
	}
	if string(runes[:80]) != strings.Repeat("ü", 80) || runes[80] != '…' {
		t.Fatalf("unexpected snippet %q", ref.Snippet)
	}
}
