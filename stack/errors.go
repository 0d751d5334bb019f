package stack

import (
    "fmt"
)

type ErrorCode int

const (
    _ ErrorCode = iota
    InvalidArgument
    EmptyStack
    IndexOutOfRange
)

func (c ErrorCode) String() string {
    switch c {
    case InvalidArgument:
        return "invalid argument"
    case EmptyStack:
        return "empty stack"
    case IndexOutOfRange:
        return "index out of range"
    default:
        return fmt.Sprintf("ErrorCode(%d)", int(c))
    }
}

// Error is returned by every failing stack operation. Op names the operation that failed.
type Error struct {
    ErrorCode ErrorCode
    Op        string
    Message   string
    Err       error
}

// Match any error of the given kind with errors.Is.
var (
    ErrInvalidArgument = Error{ErrorCode: InvalidArgument}
    ErrEmptyStack      = Error{ErrorCode: EmptyStack}
    ErrIndexOutOfRange = Error{ErrorCode: IndexOutOfRange}
)

func (e Error) Error() string {
    return e.Message
}

func (e Error) Unwrap() error {
    return e.Err
}

func (e Error) Is(target error) bool {
    if other, ok := target.(Error); ok {
        ignoreErrorCode := other.ErrorCode == 0
        ignoreMessage := other.Message == ""
        matchErrorCode := other.ErrorCode == e.ErrorCode
        matchMessage := other.Message == e.Message

        return matchMessage && matchErrorCode || matchMessage && ignoreErrorCode || ignoreMessage && matchErrorCode
    }
    return false
}

func emptyStack(op string) error {
    return Error{
        ErrorCode: EmptyStack,
        Op:        op,
        Message:   fmt.Sprintf("cannot call %s when the stack is empty", op),
    }
}

func indexOutOfRange(op string, index, length int) error {
    return Error{
        ErrorCode: IndexOutOfRange,
        Op:        op,
        Message:   fmt.Sprintf("%s: index %d out of range for length %d", op, index, length),
    }
}

func invalidArgument(op string) error {
    return Error{
        ErrorCode: InvalidArgument,
        Op:        op,
        Message:   fmt.Sprintf("%s: nil value", op),
    }
}
