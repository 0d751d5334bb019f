package api

import (
    "bufio"
    "encoding/json"
    "fmt"
    "io"
    "unicode"
)

type ProcessFunc[T any] func(T) error

// ProcessJsonStream decodes either a JSON array of items or a stream of concatenated
// JSON items from reader, calling process for each one in order.
func ProcessJsonStream[T any](reader io.Reader, process ProcessFunc[T]) error {
    br := bufio.NewReader(reader)

    // Peek at the first non-whitespace byte
    first, err := firstNonSpace(br)
    if err == io.EOF {
        return nil
    }
    if err != nil {
        return fmt.Errorf("error reading first byte: %w", err)
    }

    switch first {
    case '[':
        return processJsonArray(br, process)
    default:
        return processJsonObjects(br, process)
    }
}

func firstNonSpace(br *bufio.Reader) (byte, error) {
    for {
        b, err := br.ReadByte()
        if err != nil {
            return 0, err
        }
        if !unicode.IsSpace(rune(b)) {
            return b, br.UnreadByte()
        }
    }
}

func processJsonArray[T any](reader io.Reader, process ProcessFunc[T]) error {
    decoder := json.NewDecoder(reader)

    tok, err := decoder.Token()
    if err != nil {
        return fmt.Errorf("error reading opening token: %w", err)
    }
    if delim, ok := tok.(json.Delim); !ok || delim != '[' {
        return fmt.Errorf("expected opening [")
    }

    for decoder.More() {
        var item T
        if err := decoder.Decode(&item); err != nil {
            return fmt.Errorf("error decoding array item: %w", err)
        }

        if err := process(item); err != nil {
            return fmt.Errorf("error processing item: %w", err)
        }
    }

    tok, err = decoder.Token()
    if err != nil {
        return fmt.Errorf("error reading closing token: %w", err)
    }
    if delim, ok := tok.(json.Delim); !ok || delim != ']' {
        return fmt.Errorf("expected closing ]")
    }

    return nil
}

func processJsonObjects[T any](reader io.Reader, process ProcessFunc[T]) error {
    decoder := json.NewDecoder(reader)

    for {
        var item T
        if err := decoder.Decode(&item); err != nil {
            if err == io.EOF {
                break
            }
            return fmt.Errorf("error decoding JSON object: %w", err)
        }

        if err := process(item); err != nil {
            return fmt.Errorf("error processing item: %w", err)
        }
    }

    return nil
}
