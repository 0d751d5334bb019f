// Package stack provides a LIFO container backed by a singly linked chain of nodes, with
// list-like positional access on top of push and pop.
//
// Index 0 is always the top of the stack (the most recently pushed value). "First" names the
// top and "Last" names the bottom, the earliest pushed value still present.
//
// The head reference is published atomically so a push is visible to later readers, but only
// Remove and RemoveFirst are mutually exclusive. Mixing any other mutator with concurrent
// callers can lose updates or elements; callers that share a Stack across goroutines must
// serialize those calls themselves.
//
// There is no cursor iterator. ForEach is the only way to visit every value.
package stack

import (
    "fmt"
    "strings"
    "sync"
    "sync/atomic"
)

type Stack[T comparable] struct {
    head atomic.Pointer[Node[T]]

    // serializes Remove and RemoveFirst only
    lock sync.Mutex
}

// New returns an empty stack. The zero value of Stack is also empty and ready to use.
func New[T comparable]() *Stack[T] {
    return &Stack[T]{}
}

// top returns the head node, or an EmptyStack error naming op.
func (s *Stack[T]) top(op string) (*Node[T], error) {
    head := s.head.Load()
    if head == nil {
        return nil, emptyStack(op)
    }
    return head, nil
}

func (s *Stack[T]) IsEmpty() bool {
    return s.head.Load() == nil
}

// Length walks the whole chain; it is not cached.
func (s *Stack[T]) Length() int {
    length := 0
    for node := s.head.Load(); node != nil; node = node.next {
        length++
    }
    return length
}

func (s *Stack[T]) Clear() {
    s.head.Store(nil)
}

// AddAll replaces the contents of s with the chain of other. The chain is shared, not
// copied: after AddAll both stacks reach the same nodes, so mutating either one may be
// observed through the other. Treat other as moved. A nil other empties s.
func (s *Stack[T]) AddAll(other *Stack[T]) {
    if other == nil {
        s.Clear()
        return
    }
    s.head.Store(other.head.Load())
}

// Push places value on top of the stack. It fails only when value is a nil reference.
func (s *Stack[T]) Push(value T) error {
    node, err := NewNode(value)
    if err != nil {
        return err
    }
    node.next = s.head.Load()
    s.head.Store(node)
    return nil
}

// Set overwrites the value at index, counted from the top.
func (s *Stack[T]) Set(index int, value T) error {
    head, err := s.top("Set")
    if err != nil {
        return err
    }
    if length := s.Length(); index < 0 || index >= length {
        return indexOutOfRange("Set", index, length)
    }

    node := head
    for i := 0; i < index; i++ {
        node = node.next
    }
    return node.SetValue(value)
}

// Pop removes the top node and returns its value.
func (s *Stack[T]) Pop() (T, error) {
    head, err := s.top("Pop")
    if err != nil {
        var zero T
        return zero, err
    }
    s.head.Store(head.next)
    return head.value, nil
}

// Get returns the value at index, counted from the top. Indices past the bottom are
// rejected with IndexOutOfRange rather than walking off the chain.
func (s *Stack[T]) Get(index int) (T, error) {
    var zero T
    head, err := s.top("Get")
    if err != nil {
        return zero, err
    }
    if length := s.Length(); index < 0 || index >= length {
        return zero, indexOutOfRange("Get", index, length)
    }

    node := head
    for i := 0; i < index; i++ {
        node = node.next
    }
    return node.value, nil
}

// GetFirst returns the top value without removing it.
func (s *Stack[T]) GetFirst() (T, error) {
    head, err := s.top("GetFirst")
    if err != nil {
        var zero T
        return zero, err
    }
    return head.value, nil
}

// GetLast returns the bottom value, the earliest pushed one still present.
func (s *Stack[T]) GetLast() (T, error) {
    node, err := s.top("GetLast")
    if err != nil {
        var zero T
        return zero, err
    }
    for node.next != nil {
        node = node.next
    }
    return node.value, nil
}

func (s *Stack[T]) Contains(value T) (bool, error) {
    head, err := s.top("Contains")
    if err != nil {
        return false, err
    }
    for node := head; node != nil; node = node.next {
        if node.value == value {
            return true, nil
        }
    }
    return false, nil
}

// IndexOf returns the position of the first node holding value, counted from the top,
// or -1 when no node holds it.
func (s *Stack[T]) IndexOf(value T) (int, error) {
    node, err := s.top("IndexOf")
    if err != nil {
        return -1, err
    }
    // TODO: walk to nil instead of recounting the bound on every step.
    for index := 0; index < s.Length() && node != nil; index++ {
        if node.value == value {
            return index, nil
        }
        node = node.next
    }
    return -1, nil
}

// Remove unlinks the first node holding value and reports whether one was found.
// Remove and RemoveFirst run one at a time.
func (s *Stack[T]) Remove(value T) (bool, error) {
    s.lock.Lock()
    defer s.lock.Unlock()

    head, err := s.top("Remove")
    if err != nil {
        return false, err
    }
    if head.value == value {
        s.head.Store(head.next)
        return true, nil
    }

    previous := head
    for node := head.next; node != nil; node = node.next {
        if node.value == value {
            previous.next = node.next
            return true, nil
        }
        previous = node
    }
    return false, nil
}

// RemoveAt unlinks the node at index, counted from the top.
func (s *Stack[T]) RemoveAt(index int) (bool, error) {
    head, err := s.top("RemoveAt")
    if err != nil {
        return false, err
    }
    if length := s.Length(); index < 0 || index >= length {
        return false, indexOutOfRange("RemoveAt", index, length)
    }
    if index == 0 {
        s.head.Store(head.next)
        return true, nil
    }

    previous := head
    position := 1
    for node := head.next; node != nil; node = node.next {
        if position == index {
            previous.next = node.next
            return true, nil
        }
        previous = node
        position++
    }
    return false, nil
}

// RemoveFirst discards the top node. Remove and RemoveFirst run one at a time.
func (s *Stack[T]) RemoveFirst() error {
    s.lock.Lock()
    defer s.lock.Unlock()

    head, err := s.top("RemoveFirst")
    if err != nil {
        return err
    }
    s.head.Store(head.next)
    return nil
}

// RemoveLast discards the bottom node. A stack holding a single node is left unchanged:
// there is no predecessor to unlink the bottom from.
func (s *Stack[T]) RemoveLast() error {
    head, err := s.top("RemoveLast")
    if err != nil {
        return err
    }

    var previous *Node[T]
    for node := head; node != nil; node = node.next {
        if node.next == nil && previous != nil {
            previous.next = nil
            break
        }
        previous = node
    }
    return nil
}

// Render writes every value from top to bottom, one per line.
func (s *Stack[T]) Render() (string, error) {
    head, err := s.top("Render")
    if err != nil {
        return "", err
    }

    var sb strings.Builder
    for node := head; node != nil; node = node.next {
        sb.WriteString(fmt.Sprintf("%v\n", node.value))
    }
    return sb.String(), nil
}

// String is Render without the error; an empty stack renders as "".
func (s *Stack[T]) String() string {
    text, _ := s.Render()
    return text
}

// ForEach copies every value, top to bottom, into a snapshot and then calls action once
// per snapshot entry. The action may mutate the stack; it still sees the values present
// when ForEach started. An empty stack calls action zero times.
func (s *Stack[T]) ForEach(action func(T)) error {
    if action == nil {
        return invalidArgument("ForEach")
    }

    snapshot := make([]T, 0, s.Length())
    for node := s.head.Load(); node != nil; node = node.next {
        snapshot = append(snapshot, node.value)
    }

    for _, value := range snapshot {
        action(value)
    }
    return nil
}
