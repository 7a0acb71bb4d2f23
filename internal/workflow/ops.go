package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/scheduler"
)

// Op names a user-triggered operation.
type Op string

const (
	OpStart   Op = "start"
	OpStop    Op = "stop"
	OpUpdate  Op = "update"
	OpForward Op = "forward"
	OpFollow  Op = "follow"
)

// ParseOp converts a command name into an Op.
func ParseOp(s string) (Op, error) {
	switch op := Op(s); op {
	case OpStart, OpStop, OpUpdate, OpForward, OpFollow:
		return op, nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// Outcome summarizes a finished operation. The operational log remains
// the primary report; Outcome serves exit statuses and tool replies.
type Outcome struct {
	Op       Op
	ExitCode int
	Detail   string
}

// OK reports whether the operation succeeded.
func (o Outcome) OK() bool {
	return o.ExitCode == 0
}

func (o Outcome) String() string {
	return fmt.Sprintf("%s: %s", o.Op, o.Detail)
}

// Do runs op through the scheduler and waits for it. If the same
// operation is already running, Do returns an error wrapping
// scheduler.ErrBusy without doing anything else. Cancelling ctx stops the
// wait, not the operation; only a follow is bound to ctx.
func (e *Engine) Do(ctx context.Context, op Op) (Outcome, error) {
	opCtx := context.WithoutCancel(ctx)
	if op == OpFollow {
		opCtx = ctx
	}
	done := make(chan Outcome, 1)
	if err := e.submit(op, func() { done <- e.run(opCtx, op) }); err != nil {
		return Outcome{Op: op, ExitCode: 1, Detail: err.Error()}, err
	}
	select {
	case out := <-done:
		return out, nil
	case <-ctx.Done():
		return Outcome{Op: op, ExitCode: 1, Detail: ctx.Err().Error()}, ctx.Err()
	}
}

// Dispatch starts op in the background and returns immediately. The
// operation runs to completion even if Base ends; only a follower started
// by it is bound to Base.
func (e *Engine) Dispatch(op Op) error {
	ctx := context.WithoutCancel(e.base())
	if op == OpFollow {
		ctx = e.base()
	}
	return e.submit(op, func() { e.run(ctx, op) })
}

// Wait blocks until every dispatched operation, including a log
// follower, has finished.
func (e *Engine) Wait() {
	e.sched().Wait()
}

func (e *Engine) submit(op Op, fn func()) error {
	err := e.sched().Submit(string(op), fn)
	if errors.Is(err, scheduler.ErrBusy) {
		if op == OpFollow {
			e.Log.Message("Container logs are already being followed")
		} else {
			e.Log.Printf("%s already in progress", op)
		}
	}
	return err
}

func (e *Engine) run(ctx context.Context, op Op) Outcome {
	switch op {
	case OpStart:
		return e.Start(ctx)
	case OpStop:
		return e.Stop(ctx)
	case OpUpdate:
		return e.Update(ctx)
	case OpForward:
		return e.ToggleForwarding(ctx)
	case OpFollow:
		return e.Follow(ctx)
	}
	return Outcome{Op: op, ExitCode: 1, Detail: "unknown operation"}
}
