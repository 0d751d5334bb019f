package client

import (
    "context"
    "encoding/json"
    "errors"
    "github.com/google/go-cmp/cmp"
    "github.com/stretchr/testify/require"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
)

func TestReadBatches(t *testing.T) {
    input := "a\n\nb\n  c  \nd\ne\n"

    var batches [][]string
    var nums []int
    err := readBatches(strings.NewReader(input), 2, func(batch []string, batchNum int) error {
        batches = append(batches, batch)
        nums = append(nums, batchNum)
        return nil
    })
    require.NoError(t, err)

    if diff := cmp.Diff([][]string{{"a", "b"}, {"c", "d"}, {"e"}}, batches); diff != "" {
        t.Errorf("batches do not match (-expected, +received):\n%s", diff)
    }
    require.Equal(t, []int{1, 2, 3}, nums)
}

func TestReadBatches_ContinuesAfterFailure(t *testing.T) {
    var seen int
    err := readBatches(strings.NewReader("1\n2\n3\n"), 1, func(batch []string, batchNum int) error {
        seen++
        if batchNum == 2 {
            return errors.New("rejected")
        }
        return nil
    })
    require.NoError(t, err)
    require.Equal(t, 3, seen)
}

func TestSubmitBatch(t *testing.T) {
    var received []map[string]string
    server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path == "/reject" {
            w.WriteHeader(http.StatusNotFound)
            w.Write([]byte(`{"error":"stack nope does not exist"}`))
            return
        }
        if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
            w.WriteHeader(http.StatusBadRequest)
            return
        }
        w.WriteHeader(http.StatusCreated)
    }))
    defer server.Close()

    err := submitBatch(context.Background(), server.URL, newHTTPClient(), []string{"x", "y"}, 1)
    require.NoError(t, err)
    require.Equal(t, []map[string]string{{"value": "x"}, {"value": "y"}}, received)

    err = submitBatch(context.Background(), server.URL+"/reject", newHTTPClient(), []string{"z"}, 2)
    require.ErrorContains(t, err, "stack nope does not exist")
}
