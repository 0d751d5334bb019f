package stack

import (
    "errors"
    "fmt"
    "github.com/google/go-cmp/cmp"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "sync"
    "sync/atomic"
    "testing"
)

func TestStack_LIFO(t *testing.T) {
    tests := []struct {
        name   string
        pushed []int
    }{
        {"single", []int{7}},
        {"several", []int{1, 2, 3, 4, 5}},
        {"duplicates", []int{4, 4, 2, 4}},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            s := newStack(t, tt.pushed...)
            require.Equal(t, len(tt.pushed), s.Length())

            popped := make([]int, 0, len(tt.pushed))
            for !s.IsEmpty() {
                v, err := s.Pop()
                require.NoError(t, err)
                popped = append(popped, v)
            }

            if diff := cmp.Diff(reversed(tt.pushed), popped); diff != "" {
                t.Errorf("pop order does not match (-expected, +received):\n%s", diff)
            }
        })
    }
}

func TestStack_PushPopIdentity(t *testing.T) {
    s := newStack(t, "a", "b", "c")
    before := contents(t, s)

    require.NoError(t, s.Push("z"))
    v, err := s.Pop()
    require.NoError(t, err)
    require.Equal(t, "z", v)

    if diff := cmp.Diff(before, contents(t, s)); diff != "" {
        t.Errorf("stack changed after push/pop (-expected, +received):\n%s", diff)
    }
}

func TestStack_Length(t *testing.T) {
    for n := 0; n <= 6; n++ {
        for m := 0; m <= n; m++ {
            t.Run(fmt.Sprintf("push %d pop %d", n, m), func(t *testing.T) {
                s := New[int]()
                for i := 0; i < n; i++ {
                    require.NoError(t, s.Push(i))
                }
                for i := 0; i < m; i++ {
                    _, err := s.Pop()
                    require.NoError(t, err)
                }
                require.Equal(t, n-m, s.Length())
                require.Equal(t, n == m, s.IsEmpty())
            })
        }
    }
}

func TestStack_Scenario(t *testing.T) {
    s := newStack(t, 1, 2, 3)

    text, err := s.Render()
    require.NoError(t, err)
    require.Equal(t, "3\n2\n1\n", text)
    require.Equal(t, "3\n2\n1\n", s.String())

    first, err := s.GetFirst()
    require.NoError(t, err)
    require.Equal(t, 3, first)

    last, err := s.GetLast()
    require.NoError(t, err)
    require.Equal(t, 1, last)

    v, err := s.Pop()
    require.NoError(t, err)
    require.Equal(t, 3, v)
    require.Equal(t, 2, s.Length())
}

func TestStack_EmptyScenario(t *testing.T) {
    s := New[int]()
    _, err := s.Pop()
    require.ErrorIs(t, err, ErrEmptyStack)

    require.NoError(t, s.Push(5))
    v, err := s.Pop()
    require.NoError(t, err)
    require.Equal(t, 5, v)
    require.True(t, s.IsEmpty())
}

func TestStack_Get(t *testing.T) {
    s := newStack(t, "a", "b", "c")

    tests := []struct {
        index    int
        expected string
    }{
        {0, "c"},
        {1, "b"},
        {2, "a"},
    }
    for _, tt := range tests {
        t.Run(fmt.Sprintf("index %d", tt.index), func(t *testing.T) {
            v, err := s.Get(tt.index)
            require.NoError(t, err)
            require.Equal(t, tt.expected, v)
        })
    }

    for _, index := range []int{-1, 3, 10} {
        t.Run(fmt.Sprintf("out of range %d", index), func(t *testing.T) {
            _, err := s.Get(index)
            require.ErrorIs(t, err, ErrIndexOutOfRange)
        })
    }
}

func TestStack_Set(t *testing.T) {
    s := newStack(t, "a", "b", "c")
    require.NoError(t, s.Set(1, "x"))

    if diff := cmp.Diff([]string{"c", "x", "a"}, contents(t, s)); diff != "" {
        t.Errorf("stack contents do not match (-expected, +received):\n%s", diff)
    }

    require.ErrorIs(t, s.Set(3, "y"), ErrIndexOutOfRange)
    require.ErrorIs(t, s.Set(-1, "y"), ErrIndexOutOfRange)
}

func TestStack_SetRejectsNil(t *testing.T) {
    a, b := "a", "b"
    s := newStack(t, &a, &b)
    require.ErrorIs(t, s.Set(0, nil), ErrInvalidArgument)

    v, err := s.GetFirst()
    require.NoError(t, err)
    require.Same(t, &b, v)
}

func TestStack_PushRejectsNil(t *testing.T) {
    s := New[*int]()
    require.ErrorIs(t, s.Push(nil), ErrInvalidArgument)
    require.True(t, s.IsEmpty())
}

func TestStack_ContainsAndIndexOf(t *testing.T) {
    s := newStack(t, "a", "b", "c", "b")

    tests := []struct {
        value    string
        contains bool
        index    int
    }{
        {"b", true, 0}, // head
        {"c", true, 1},
        {"a", true, 3}, // tail
        {"z", false, -1},
    }
    for _, tt := range tests {
        t.Run(tt.value, func(t *testing.T) {
            contains, err := s.Contains(tt.value)
            require.NoError(t, err)
            require.Equal(t, tt.contains, contains)

            index, err := s.IndexOf(tt.value)
            require.NoError(t, err)
            require.Equal(t, tt.index, index)
        })
    }
}

func TestStack_Remove(t *testing.T) {
    tests := []struct {
        name     string
        pushed   []string
        value    string
        expected []string
    }{
        {"head", []string{"a", "b", "c"}, "c", []string{"b", "a"}},
        {"middle", []string{"a", "b", "c"}, "b", []string{"c", "a"}},
        {"tail", []string{"a", "b", "c"}, "a", []string{"c", "b"}},
        {"only", []string{"a"}, "a", []string{}},
        {"first of duplicates", []string{"b", "a", "b"}, "b", []string{"a", "b"}},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            s := newStack(t, tt.pushed...)
            removed, err := s.Remove(tt.value)
            require.NoError(t, err)
            require.True(t, removed)

            if diff := cmp.Diff(tt.expected, contents(t, s)); diff != "" {
                t.Errorf("stack contents do not match (-expected, +received):\n%s", diff)
            }
        })
    }
}

func TestStack_RemoveTwice(t *testing.T) {
    s := newStack(t, 1, 2, 3)

    removed, err := s.Remove(2)
    require.NoError(t, err)
    require.True(t, removed)
    require.Equal(t, 2, s.Length())

    removed, err = s.Remove(2)
    require.NoError(t, err)
    require.False(t, removed)
    require.Equal(t, 2, s.Length())
}

func TestStack_RemoveAt(t *testing.T) {
    tests := []struct {
        index    int
        expected []int
    }{
        {0, []int{2, 1}},
        {1, []int{3, 1}},
        {2, []int{3, 2}},
    }

    for _, tt := range tests {
        t.Run(fmt.Sprintf("index %d", tt.index), func(t *testing.T) {
            s := newStack(t, 1, 2, 3)
            removed, err := s.RemoveAt(tt.index)
            require.NoError(t, err)
            require.True(t, removed)

            if diff := cmp.Diff(tt.expected, contents(t, s)); diff != "" {
                t.Errorf("stack contents do not match (-expected, +received):\n%s", diff)
            }
        })
    }

    t.Run("out of range", func(t *testing.T) {
        s := newStack(t, 1, 2, 3)
        _, err := s.RemoveAt(5)
        require.ErrorIs(t, err, ErrIndexOutOfRange)

        var stackErr Error
        require.True(t, errors.As(err, &stackErr))
        require.Equal(t, "RemoveAt", stackErr.Op)
        require.Equal(t, 3, s.Length())
    })
}

func TestStack_RemoveFirst(t *testing.T) {
    s := newStack(t, 1, 2)
    require.NoError(t, s.RemoveFirst())
    if diff := cmp.Diff([]int{1}, contents(t, s)); diff != "" {
        t.Errorf("stack contents do not match (-expected, +received):\n%s", diff)
    }

    require.NoError(t, s.RemoveFirst())
    require.True(t, s.IsEmpty())
    require.ErrorIs(t, s.RemoveFirst(), ErrEmptyStack)
}

func TestStack_RemoveLast(t *testing.T) {
    s := newStack(t, 1, 2, 3)
    require.NoError(t, s.RemoveLast())
    if diff := cmp.Diff([]int{3, 2}, contents(t, s)); diff != "" {
        t.Errorf("stack contents do not match (-expected, +received):\n%s", diff)
    }
}

func TestStack_RemoveLastSingleIsNoop(t *testing.T) {
    s := newStack(t, 9)
    require.NoError(t, s.RemoveLast())
    require.Equal(t, 1, s.Length())

    v, err := s.GetFirst()
    require.NoError(t, err)
    require.Equal(t, 9, v)
}

func TestStack_ClearRequiresElements(t *testing.T) {
    s := newStack(t, 1, 2, 3)
    s.Clear()
    require.True(t, s.IsEmpty())
    require.Equal(t, 0, s.Length())

    tests := []struct {
        op   string
        call func() error
    }{
        {"Set", func() error { return s.Set(0, 1) }},
        {"Pop", func() error { _, err := s.Pop(); return err }},
        {"Get", func() error { _, err := s.Get(0); return err }},
        {"GetFirst", func() error { _, err := s.GetFirst(); return err }},
        {"GetLast", func() error { _, err := s.GetLast(); return err }},
        {"Contains", func() error { _, err := s.Contains(1); return err }},
        {"IndexOf", func() error { _, err := s.IndexOf(1); return err }},
        {"Remove", func() error { _, err := s.Remove(1); return err }},
        {"RemoveAt", func() error { _, err := s.RemoveAt(0); return err }},
        {"RemoveFirst", s.RemoveFirst},
        {"RemoveLast", s.RemoveLast},
        {"Render", func() error { _, err := s.Render(); return err }},
    }

    for _, tt := range tests {
        t.Run(tt.op, func(t *testing.T) {
            err := tt.call()
            require.ErrorIs(t, err, ErrEmptyStack)

            var stackErr Error
            require.True(t, errors.As(err, &stackErr))
            require.Equal(t, tt.op, stackErr.Op)
            require.Equal(t, fmt.Sprintf("cannot call %s when the stack is empty", tt.op), stackErr.Error())
        })
    }

    require.Equal(t, "", s.String())
}

func TestStack_AddAllSharesChain(t *testing.T) {
    donor := newStack(t, "a", "b")
    s := newStack(t, "x", "y", "z")

    s.AddAll(donor)
    if diff := cmp.Diff([]string{"b", "a"}, contents(t, s)); diff != "" {
        t.Errorf("stack contents do not match (-expected, +received):\n%s", diff)
    }

    // nodes are shared, so an in-place edit shows through both stacks
    require.NoError(t, s.Set(1, "q"))
    v, err := donor.Get(1)
    require.NoError(t, err)
    require.Equal(t, "q", v)

    s.AddAll(nil)
    require.True(t, s.IsEmpty())
}

func TestStack_ForEach(t *testing.T) {
    s := newStack(t, 1, 2, 3)

    var seen []int
    require.NoError(t, s.ForEach(func(v int) {
        seen = append(seen, v)
        // mutation during the walk does not change what the action sees
        require.NoError(t, s.Push(v*10))
    }))

    if diff := cmp.Diff([]int{3, 2, 1}, seen); diff != "" {
        t.Errorf("visited values do not match (-expected, +received):\n%s", diff)
    }
    require.Equal(t, 6, s.Length())

    calls := 0
    require.NoError(t, New[int]().ForEach(func(int) { calls++ }))
    require.Zero(t, calls)

    require.ErrorIs(t, s.ForEach(nil), ErrInvalidArgument)
}

func TestStack_ExclusiveRemovals(t *testing.T) {
    const n = 200
    s := New[int]()
    for i := 0; i < n; i++ {
        require.NoError(t, s.Push(i))
    }

    var removed atomic.Int64
    var wg sync.WaitGroup
    for i := 0; i < n; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            if i%2 == 0 {
                if err := s.RemoveFirst(); err == nil {
                    removed.Add(1)
                }
                return
            }
            if ok, err := s.Remove(i); err == nil && ok {
                removed.Add(1)
            }
        }(i)
    }
    wg.Wait()

    require.Equal(t, n-int(removed.Load()), s.Length())
    require.GreaterOrEqual(t, removed.Load(), int64(n/2))
}

func TestStack_ConcurrentRemoveByValue(t *testing.T) {
    const n = 200
    s := New[int]()
    for i := 0; i < n; i++ {
        require.NoError(t, s.Push(i))
    }

    var wg sync.WaitGroup
    for i := 0; i < n; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            ok, err := s.Remove(i)
            assert.NoError(t, err)
            assert.True(t, ok)
        }(i)
    }
    wg.Wait()

    require.True(t, s.IsEmpty())
}

func TestStack_ZeroValue(t *testing.T) {
    var s Stack[string]
    require.True(t, s.IsEmpty())
    require.NoError(t, s.Push("a"))
    require.Equal(t, 1, s.Length())
}

func newStack[T comparable](tb testing.TB, values ...T) *Stack[T] {
    s := New[T]()
    for _, v := range values {
        if err := s.Push(v); err != nil {
            tb.Fatal(err)
        }
    }
    return s
}

func contents[T comparable](tb testing.TB, s *Stack[T]) []T {
    values := make([]T, 0)
    if err := s.ForEach(func(v T) { values = append(values, v) }); err != nil {
        tb.Fatal(err)
    }
    return values
}

func reversed[T any](values []T) []T {
    out := make([]T, len(values))
    for i, v := range values {
        out[len(values)-1-i] = v
    }
    return out
}
