package world

import "github.com/l1jgo/elemrt/internal/core/ecs"

// CommandKind labels a deferred structural operation.
type CommandKind uint8

const (
	CmdInsert CommandKind = iota
	CmdRemove
	CmdObserve
	CmdTrigger
	CmdDepend
	CmdUnlink
)

func (k CommandKind) String() string {
	switch k {
	case CmdInsert:
		return "insert"
	case CmdRemove:
		return "remove"
	case CmdObserve:
		return "observe"
	case CmdTrigger:
		return "trigger"
	case CmdDepend:
		return "depend"
	case CmdUnlink:
		return "unlink"
	default:
		return "unknown"
	}
}

type command struct {
	kind   CommandKind
	handle ecs.Handle
	apply  func(*World)
}

// commandQueue is a FIFO shared by every submitter, so effects issued across
// different entities replay in submission order.
type commandQueue struct {
	items []command
	head  int
}

func (q *commandQueue) push(c command) {
	q.items = append(q.items, c)
}

func (q *commandQueue) pop() (command, bool) {
	if q.head >= len(q.items) {
		if q.head > 0 {
			q.items = q.items[:0]
			q.head = 0
		}
		return command{}, false
	}
	c := q.items[q.head]
	q.items[q.head] = command{}
	q.head++
	return c, true
}

func (q *commandQueue) len() int { return len(q.items) - q.head }

// end is the absolute position the next push lands at.
func (q *commandQueue) end() int { return len(q.items) }

// truncate drops every command at or after absolute position mark that has
// not been popped yet, and reports how many were dropped.
func (q *commandQueue) truncate(mark int) int {
	if mark < q.head {
		mark = q.head
	}
	if mark >= len(q.items) {
		return 0
	}
	dropped := len(q.items) - mark
	clear(q.items[mark:])
	q.items = q.items[:mark]
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return dropped
}
