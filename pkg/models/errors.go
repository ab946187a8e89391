package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for every rejection the WBS engine can return. Callers match
// them with errors.Is; the wrapping *TaskError carries the offending values.
var (
	ErrTaskNotFound               = errors.New("task not found")
	ErrNoParent                   = errors.New("task has no parent")
	ErrNoChildIndex               = errors.New("task has no child index")
	ErrBadTaskIDString            = errors.New("bad task id string")
	ErrBadTaskIDNum               = errors.New("bad task id number")
	ErrNoNextSibling              = errors.New("task has no next sibling")
	ErrNoPrevSibling              = errors.New("task has no previous sibling")
	ErrTrunkCannotBeRemoved       = errors.New("trunk task cannot be removed")
	ErrTrunkCannotChangeCost      = errors.New("trunk task cannot change actual cost")
	ErrTrunkCannotChangeValue     = errors.New("trunk task cannot change planned value")
	ErrTrunkCannotChangeStatus    = errors.New("trunk task cannot change status")
	ErrTrunkCannotAddMember       = errors.New("trunk task cannot add member")
	ErrTrunkCannotRemoveMember    = errors.New("trunk task cannot remove member")
	ErrCannotRemoveMemberFromTask = errors.New("member is not assigned to task")
	ErrInvalidValue               = errors.New("invalid value")
)

// TaskError is a deterministic rejection of a request against the current tree
// state. Err is one of the sentinels above.
type TaskError struct {
	Err    error
	ID     TaskID
	Text   string // malformed identifier text, for ErrBadTaskIDString
	Member string // member name, for the member errors
}

func (e *TaskError) Error() string {
	switch {
	case e.Text != "":
		return fmt.Sprintf("%s: %q", e.Err, e.Text)
	case e.Member != "":
		return fmt.Sprintf("%s: task %q, member %q", e.Err, e.ID, e.Member)
	default:
		return fmt.Sprintf("%s: task %q", e.Err, e.ID)
	}
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
