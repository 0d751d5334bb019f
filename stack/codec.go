package stack

import (
    "encoding/json"
    "fmt"
)

// MarshalJSON encodes the stack as a JSON array ordered from top to bottom.
// An empty stack encodes as [].
func (s *Stack[T]) MarshalJSON() ([]byte, error) {
    values := make([]T, 0)
    for node := s.head.Load(); node != nil; node = node.next {
        values = append(values, node.value)
    }
    return json.Marshal(values)
}

// UnmarshalJSON replaces the contents of s with a JSON array ordered from top to bottom.
// The stack is only replaced once every element has decoded into a valid node.
func (s *Stack[T]) UnmarshalJSON(data []byte) error {
    var values []T
    if err := json.Unmarshal(data, &values); err != nil {
        return fmt.Errorf("decoding stack: %w", err)
    }

    var head *Node[T]
    for i := len(values) - 1; i >= 0; i-- {
        node, err := NewNode(values[i])
        if err != nil {
            return fmt.Errorf("decoding stack element %d: %w", i, err)
        }
        node.next = head
        head = node
    }
    s.head.Store(head)
    return nil
}
