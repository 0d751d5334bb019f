package stack

import (
    "github.com/stretchr/testify/require"
    "testing"
)

func TestNewNode_RejectsAbsentValues(t *testing.T) {
    var (
        nilPointer *int
        nilMap     map[string]int
        nilSlice   []byte
        nilFunc    func()
        nilError   error
    )

    tests := []struct {
        name string
        err  error
    }{
        {"nil pointer", newNodeErr(nilPointer)},
        {"nil map", newNodeErr(nilMap)},
        {"nil slice", newNodeErr(nilSlice)},
        {"nil func", newNodeErr(nilFunc)},
        {"nil interface", newNodeErr(nilError)},
        {"nil any", newNodeErr[any](nil)},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            require.ErrorIs(t, tt.err, ErrInvalidArgument)
        })
    }
}

func TestNewNode_AcceptsValues(t *testing.T) {
    require.NoError(t, newNodeErr(0))
    require.NoError(t, newNodeErr(""))
    require.NoError(t, newNodeErr(struct{}{}))
    require.NoError(t, newNodeErr([]byte{}))
}

func TestNode_Links(t *testing.T) {
    tail, err := NewNode("tail")
    require.NoError(t, err)
    head, err := NewNode("head")
    require.NoError(t, err)

    require.Nil(t, head.Next())
    head.SetNext(tail)
    require.Same(t, tail, head.Next())

    require.NoError(t, head.SetValue("top"))
    require.Equal(t, "top", head.Value())

    head.SetNext(nil)
    require.Nil(t, head.Next())
}

func TestNode_SetValueRejectsNil(t *testing.T) {
    v := 1
    node, err := NewNode(&v)
    require.NoError(t, err)

    require.ErrorIs(t, node.SetValue(nil), ErrInvalidArgument)
    require.Same(t, &v, node.Value())
}

func newNodeErr[T any](value T) error {
    _, err := NewNode(value)
    return err
}
