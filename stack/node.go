package stack

import (
    "reflect"
)

// Node is a single link of the chain backing a Stack. A node always holds a value;
// its link may be reassigned freely by the stack that owns it.
type Node[T any] struct {
    value T
    next  *Node[T]
}

func NewNode[T any](value T) (*Node[T], error) {
    if absent(value) {
        return nil, invalidArgument("NewNode")
    }
    return &Node[T]{value: value}, nil
}

func (n *Node[T]) Value() T {
    return n.value
}

func (n *Node[T]) SetValue(value T) error {
    if absent(value) {
        return invalidArgument("SetValue")
    }
    n.value = value
    return nil
}

// Next returns the following node, or nil at the tail.
func (n *Node[T]) Next() *Node[T] {
    return n.next
}

func (n *Node[T]) SetNext(next *Node[T]) {
    n.next = next
}

// absent reports whether value is the nil of a reference kind. Value kinds are never absent.
func absent[T any](value T) bool {
    v := reflect.ValueOf(any(value))
    if !v.IsValid() {
        return true
    }
    switch v.Kind() {
    case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
        return v.IsNil()
    default:
        return false
    }
}
