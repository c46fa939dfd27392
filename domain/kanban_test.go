package domain

import "testing"

func TestApplyColumnTransition(t *testing.T) {
	cases := []struct {
		cur    Status
		dir    Direction
		want   Status
		wantOK bool
	}{
		{StatusTodo, MoveRight, StatusInProgress, true},
		{StatusInProgress, MoveRight, StatusDone, true},
		{StatusInProgress, MoveLeft, StatusTodo, true},
		{StatusDone, MoveLeft, StatusInProgress, true},
		{StatusTodo, MoveLeft, StatusTodo, false},
		{StatusDone, MoveRight, StatusDone, false},
		{Status("archived"), MoveRight, Status("archived"), false},
	}
	for _, tc := range cases {
		got, ok := ApplyColumnTransition(tc.cur, tc.dir)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("ApplyColumnTransition(%q, %d) = %q, %v; want %q, %v", tc.cur, tc.dir, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestDropTransition(t *testing.T) {
	if got, ok := DropTransition(StatusTodo, "done"); !ok || got != StatusDone {
		t.Fatalf("expected drop onto done, got %q, %v", got, ok)
	}
	if _, ok := DropTransition(StatusTodo, "todo"); ok {
		t.Fatal("drop onto own column must be a no-op")
	}
	if _, ok := DropTransition(StatusTodo, "trash"); ok {
		t.Fatal("drop outside a valid column must be a no-op")
	}
	if _, ok := DropTransition(StatusTodo, ""); ok {
		t.Fatal("drop onto nothing must be a no-op")
	}
}

// Dragging a card one column over and pressing the keyboard shortcut
// must resolve to the same transition.
func TestDragAndKeyboardConverge(t *testing.T) {
	kb, ok := ApplyColumnTransition(StatusTodo, MoveRight)
	if !ok {
		t.Fatal("keyboard move rejected")
	}
	drag, ok := DropTransition(StatusTodo, string(StatusInProgress))
	if !ok {
		t.Fatal("drag move rejected")
	}
	if kb != drag {
		t.Fatalf("modalities diverge: keyboard %q, drag %q", kb, drag)
	}
}

func TestFocusClamping(t *testing.T) {
	var f Focus
	f.FocusColumn(StatusInProgress, 3)
	if f.Column != StatusInProgress || f.Index != 0 {
		t.Fatalf("unexpected focus: %+v", f)
	}
	f.MoveVertical(10, 3)
	if f.Index != 2 {
		t.Fatalf("expected clamp to last index 2, got %d", f.Index)
	}
	f.MoveVertical(-10, 3)
	if f.Index != 0 {
		t.Fatalf("expected clamp to 0, got %d", f.Index)
	}
	f.FocusColumn(Status("bogus"), 5)
	if f.Column != StatusInProgress {
		t.Fatalf("invalid column must be ignored, got %q", f.Column)
	}
	f.Index = 2
	f.FocusColumn(StatusDone, 1)
	if f.Index != 0 {
		t.Fatalf("index must clamp into the shorter column, got %d", f.Index)
	}
	f.MoveVertical(1, 0)
	if f.Index != 0 {
		t.Fatalf("empty column pins index to 0, got %d", f.Index)
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	task := Task{ID: "t1", CreatedBy: "alice"}
	var d DeleteConfirm

	if d.Request(task, "bob", RoleMember) {
		t.Fatal("member without delete rights must not arm")
	}
	if d.Confirm("t1") {
		t.Fatal("confirm without arming must fail")
	}

	if !d.Request(task, "alice", RoleMember) {
		t.Fatal("creator must arm")
	}
	if d.Confirm("t2") {
		t.Fatal("confirm must name the armed task")
	}
	if d.Confirm("t1") {
		t.Fatal("mismatched confirm must disarm")
	}

	if !d.Request(task, "bob", RoleAdmin) {
		t.Fatal("admin must arm")
	}
	d.Cancel()
	if d.Confirm("t1") {
		t.Fatal("cancel must disarm")
	}

	if !d.Request(task, "alice", RoleMember) {
		t.Fatal("re-arm")
	}
	if !d.Confirm("t1") {
		t.Fatal("matching confirm must succeed")
	}
	if d.Confirm("t1") {
		t.Fatal("confirm is one-shot")
	}
}
