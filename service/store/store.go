package store

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "github.com/aleph-zero/linkstack/stack"
    "github.com/aleph-zero/linkstack/telemetry"
    log "github.com/go-chi/httplog/v2"
    "github.com/google/uuid"
    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/attribute"
    "go.opentelemetry.io/otel/metric"
    "go.opentelemetry.io/otel/metric/noop"
    "go.opentelemetry.io/otel/trace"
    "maps"
    "os"
    "path/filepath"
    "slices"
    "sync"
    "time"
)

const (
    storeFile           = "stacks.json"
    instrumentationName = "github.com/aleph-zero/linkstack/service/store"
)

// Service keeps a set of named stacks and persists them to a single JSON file.
type Service interface {
    Open() error
    Persist() error
    Create(ctx context.Context, name string) (*Info, error)
    Drop(ctx context.Context, name string) error
    Names() []string
    Info(name string) (*Info, error)
    Do(ctx context.Context, name, op string, fn func(*stack.Stack[string]) error) error
    AddAll(ctx context.Context, name, from string) error
}

type ServiceProvider struct {
    filestore *filestore
    ops       metric.Int64Counter
}

func NewService(directory string) Service {
    ops, err := otel.Meter(instrumentationName).Int64Counter("linkstack.operations",
        metric.WithDescription("Number of stack operations executed"),
        metric.WithUnit("{operation}"))
    if err != nil {
        otel.Handle(err)
        ops = noop.Int64Counter{}
    }

    return &ServiceProvider{
        filestore: newFileStore(directory),
        ops:       ops,
    }
}

type filestore struct {
    lock      sync.RWMutex
    directory string
    Stacks    map[string]*entry `json:"stacks"`
}

func newFileStore(directory string) *filestore {
    return &filestore{
        directory: directory,
        Stacks:    make(map[string]*entry),
    }
}

// entry pairs a stack with its metadata. HTTP handlers run concurrently, so every
// operation on one stack is serialized through lock.
type entry struct {
    lock sync.Mutex
    Info
    Values *stack.Stack[string] `json:"values"`
}

type Info struct {
    ID      string    `json:"id"`
    Name    string    `json:"name"`
    Created time.Time `json:"created"`
}

func (s *ServiceProvider) Open() error {
    s.filestore.lock.Lock()
    defer s.filestore.lock.Unlock()

    data, err := os.ReadFile(filepath.Join(s.filestore.directory, storeFile))
    if errors.Is(err, os.ErrNotExist) {
        return nil
    }
    if err != nil {
        return fmt.Errorf("opening filestore: %w", err)
    }

    if err = json.Unmarshal(data, s.filestore); err != nil {
        return fmt.Errorf("unmarshalling filestore: %w", err)
    }
    for name, e := range s.filestore.Stacks {
        if e.Values == nil {
            e.Values = stack.New[string]()
        }
        e.Name = name
    }
    return nil
}

func (s *ServiceProvider) Persist() error {
    s.filestore.lock.Lock()
    defer s.filestore.lock.Unlock()

    data, err := json.MarshalIndent(s.filestore, "", "  ")
    if err != nil {
        return fmt.Errorf("marshalling filestore: %w", err)
    }

    if err = os.MkdirAll(s.filestore.directory, 0750); err != nil {
        return fmt.Errorf("creating filestore directory: %w", err)
    }
    if err = os.WriteFile(filepath.Join(s.filestore.directory, storeFile), data, 0644); err != nil {
        return fmt.Errorf("persisting filestore: %w", err)
    }
    return nil
}

func (s *ServiceProvider) Create(ctx context.Context, name string) (*Info, error) {
    if name == "" {
        return nil, Error{ErrorCode: InvalidName, Message: "stack name must not be empty"}
    }

    s.filestore.lock.Lock()
    defer s.filestore.lock.Unlock()

    if _, ok := s.filestore.Stacks[name]; ok {
        log.LogEntry(ctx).Error("Stack already exists", "stack", name)
        return nil, Error{
            ErrorCode: StackExists,
            Message:   fmt.Sprintf("stack %s already exists", name),
        }
    }

    e := &entry{
        Info: Info{
            ID:      uuid.NewString(),
            Name:    name,
            Created: time.Now().UTC(),
        },
        Values: stack.New[string](),
    }
    s.filestore.Stacks[name] = e
    log.LogEntry(ctx).Info("Created stack", "stack", name, "id", e.ID)

    info := e.Info
    return &info, nil
}

func (s *ServiceProvider) Drop(ctx context.Context, name string) error {
    s.filestore.lock.Lock()
    defer s.filestore.lock.Unlock()

    if _, ok := s.filestore.Stacks[name]; !ok {
        return noSuchStack(name)
    }
    delete(s.filestore.Stacks, name)
    log.LogEntry(ctx).Info("Dropped stack", "stack", name)
    return nil
}

func (s *ServiceProvider) Names() []string {
    s.filestore.lock.RLock()
    defer s.filestore.lock.RUnlock()
    return slices.Sorted(maps.Keys(s.filestore.Stacks))
}

func (s *ServiceProvider) Info(name string) (*Info, error) {
    s.filestore.lock.RLock()
    defer s.filestore.lock.RUnlock()

    e, ok := s.filestore.Stacks[name]
    if !ok {
        return nil, noSuchStack(name)
    }
    info := e.Info
    return &info, nil
}

// Do runs fn against the named stack while holding that stack's lock. Errors returned by
// fn are passed through unchanged.
func (s *ServiceProvider) Do(ctx context.Context, name, op string, fn func(*stack.Stack[string]) error) error {
    ctx, span := telemetry.StartSpan(ctx, "store."+op, trace.WithAttributes(
        attribute.String("stack", name),
        attribute.String("op", op)))
    defer span.End()
    s.ops.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))

    s.filestore.lock.RLock()
    defer s.filestore.lock.RUnlock()

    e, ok := s.filestore.Stacks[name]
    if !ok {
        return noSuchStack(name)
    }

    e.lock.Lock()
    defer e.lock.Unlock()

    err := fn(e.Values)
    telemetry.SetAttributes(span, attribute.Bool("failed", err != nil))
    if err != nil {
        span.RecordError(err)
        log.LogEntry(ctx).Warn("Stack operation failed", "stack", name, "op", op, "error", err)
        return err
    }
    return nil
}

// AddAll makes the stack name share the chain of the stack from.
func (s *ServiceProvider) AddAll(ctx context.Context, name, from string) error {
    ctx, span := telemetry.StartSpan(ctx, "store.AddAll", trace.WithAttributes(
        attribute.String("stack", name),
        attribute.String("from", from)))
    defer span.End()
    s.ops.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "AddAll")))

    s.filestore.lock.RLock()
    defer s.filestore.lock.RUnlock()

    target, ok := s.filestore.Stacks[name]
    if !ok {
        return noSuchStack(name)
    }
    donor, ok := s.filestore.Stacks[from]
    if !ok {
        return noSuchStack(from)
    }

    if target == donor {
        return nil
    }

    // always lock in name order so two opposing AddAll calls cannot deadlock
    first, second := target, donor
    if from < name {
        first, second = donor, target
    }
    first.lock.Lock()
    defer first.lock.Unlock()
    second.lock.Lock()
    defer second.lock.Unlock()

    target.Values.AddAll(donor.Values)
    log.LogEntry(ctx).Info("Stack now shares chain", "stack", name, "from", from)
    return nil
}

/* *** Store Config *** */

type Config struct {
    Directory string
}

type Option func(*Config)

func NewConfig(options ...Option) *Config {
    cfg := &Config{}
    for _, option := range options {
        option(cfg)
    }
    return cfg
}

func WithDirectory(directory string) Option {
    return func(config *Config) {
        config.Directory = directory
    }
}

/* *** Errors *** */

type ErrorCode int

const (
    _ ErrorCode = iota
    StackExists
    NoSuchStack
    InvalidName
)

type Error struct {
    ErrorCode ErrorCode
    Message   string
    Err       error
}

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

func noSuchStack(name string) error {
    return Error{
        ErrorCode: NoSuchStack,
        Message:   fmt.Sprintf("stack %s does not exist", name),
    }
}
