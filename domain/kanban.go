package domain

// Kanban interaction model: both input modalities (pointer drag-and-drop
// and keyboard navigation) resolve gestures to the same status
// transitions here and then issue identical mutation calls. Nothing in
// this file persists anything.

// Direction is a one-column horizontal move.
type Direction int

const (
	MoveLeft  Direction = -1
	MoveRight Direction = 1
)

// columnOrder fixes the left-to-right board layout.
var columnOrder = [...]Status{StatusTodo, StatusInProgress, StatusDone}

func columnIndex(s Status) int {
	for i, c := range columnOrder {
		if c == s {
			return i
		}
	}
	return -1
}

// ApplyColumnTransition returns the status a task lands on when moved
// exactly one column in dir. ok is false when the move is illegal
// (left from todo, right from done, or an unknown current status); the
// caller must treat that as a no-op and issue no mutation.
func ApplyColumnTransition(cur Status, dir Direction) (Status, bool) {
	i := columnIndex(cur)
	if i < 0 {
		return cur, false
	}
	j := i + int(dir)
	if j < 0 || j >= len(columnOrder) {
		return cur, false
	}
	return columnOrder[j], true
}

// DropTransition resolves a pointer drop of a task card onto columnID.
// Dropping over anything that is not a valid column, or back onto the
// task's own column, is a no-op.
func DropTransition(cur Status, columnID string) (Status, bool) {
	target := Status(columnID)
	if !target.Valid() || target == cur {
		return cur, false
	}
	return target, true
}

// Focus is the board UI's ephemeral keyboard state: one focused column
// and an index within it. It is never persisted.
type Focus struct {
	Column Status
	Index  int
}

// FocusColumn selects a column directly and resets the index into range
// for that column's length.
func (f *Focus) FocusColumn(col Status, columnLen int) {
	if !col.Valid() {
		return
	}
	f.Column = col
	f.Index = clampIndex(f.Index, columnLen)
}

// MoveVertical moves the focused index by delta, clamped to
// [0, columnLen-1].
func (f *Focus) MoveVertical(delta, columnLen int) {
	f.Index = clampIndex(f.Index+delta, columnLen)
}

func clampIndex(i, columnLen int) int {
	if columnLen <= 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= columnLen {
		return columnLen - 1
	}
	return i
}

// DeleteConfirm is the explicit two-step arming state for keyboard
// deletion. Request arms only when the actor has delete rights; the
// following Confirm must name the same task.
type DeleteConfirm struct {
	armed  bool
	taskID string
}

// Request arms deletion of the task. It refuses for actors without
// delete rights.
func (d *DeleteConfirm) Request(t Task, actorID string, role Role) bool {
	if !CanDeleteTask(t, actorID, role) {
		d.Cancel()
		return false
	}
	d.armed = true
	d.taskID = t.ID
	return true
}

// Confirm reports whether deletion of taskID was armed, and disarms
// either way.
func (d *DeleteConfirm) Confirm(taskID string) bool {
	ok := d.armed && d.taskID == taskID
	d.Cancel()
	return ok
}

// Cancel disarms any pending deletion.
func (d *DeleteConfirm) Cancel() {
	d.armed = false
	d.taskID = ""
}
