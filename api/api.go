package api

import (
    "context"
    "errors"
    "github.com/aleph-zero/linkstack/service/info"
    "github.com/aleph-zero/linkstack/service/store"
    "github.com/aleph-zero/linkstack/stack"
    "github.com/go-chi/chi/v5"
    "github.com/go-chi/render"
    "net/http"
    "strconv"
)

type contextKey string

const stackKey contextKey = "stack"

/* *** Identity API *** */

type IdentityHandler struct {
    service info.Service
}

func NewIdentityHandler(svc info.Service) IdentityHandler {
    return IdentityHandler{service: svc}
}

func (h *IdentityHandler) GetIdentity(w http.ResponseWriter, r *http.Request) {
    render.Status(r, http.StatusOK)
    render.JSON(w, r, info.Identity{Identity: h.service.Identify()})
}

func (h *IdentityHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
    render.Status(r, http.StatusOK)
    render.JSON(w, r, h.service.NodeInfo())
}

/* *** Stack API *** */

type StackHandler struct {
    service store.Service
}

func NewStackHandler(svc store.Service) StackHandler {
    return StackHandler{service: svc}
}

// Routes returns the router mounted under /stacks.
func (h *StackHandler) Routes() chi.Router {
    r := chi.NewRouter()
    r.Get("/", h.List)
    r.Route("/{stack}", func(r chi.Router) {
        r.Use(StackContext)
        r.Get("/", h.Show)
        r.Put("/", h.Create)
        r.Delete("/", h.Drop)
        r.Get("/text", h.Text)
        r.Get("/length", h.Length)
        r.Get("/first", h.First)
        r.Get("/last", h.Last)
        r.Get("/contains", h.Contains)
        r.Get("/index", h.IndexOf)
        r.Post("/push", h.Push)
        r.Post("/bulk", h.Bulk)
        r.Post("/pop", h.Pop)
        r.Post("/remove-first", h.RemoveFirst)
        r.Post("/remove-last", h.RemoveLast)
        r.Post("/clear", h.Clear)
        r.Post("/add-all", h.AddAll)
        r.Delete("/values", h.Remove)
        r.Get("/items/{index}", h.Get)
        r.Put("/items/{index}", h.Set)
        r.Delete("/items/{index}", h.RemoveAt)
    })
    return r
}

func StackContext(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        var name string
        if name = chi.URLParam(r, "stack"); name == "" {
            render.Render(w, r, ErrInvalidRequest(errors.New("missing stack name")))
            return
        }
        ctx := context.WithValue(r.Context(), stackKey, name)
        next.ServeHTTP(w, r.WithContext(ctx))
    })
}

func stackFromContext(ctx context.Context) string {
    name, _ := ctx.Value(stackKey).(string)
    return name
}

func (h *StackHandler) List(w http.ResponseWriter, r *http.Request) {
    render.Status(r, http.StatusOK)
    render.Render(w, r, &NamesResponse{Stacks: h.service.Names()})
}

func (h *StackHandler) Create(w http.ResponseWriter, r *http.Request) {
    created, err := h.service.Create(r.Context(), stackFromContext(r.Context()))
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Status(r, http.StatusCreated)
    render.Render(w, r, &StackResponse{Info: created, Values: []string{}})
}

func (h *StackHandler) Drop(w http.ResponseWriter, r *http.Request) {
    if err := h.service.Drop(r.Context(), stackFromContext(r.Context())); err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.NoContent(w, r)
}

func (h *StackHandler) Show(w http.ResponseWriter, r *http.Request) {
    name := stackFromContext(r.Context())
    details, err := h.service.Info(name)
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }

    values := make([]string, 0)
    err = h.service.Do(r.Context(), name, "ForEach", func(s *stack.Stack[string]) error {
        return s.ForEach(func(v string) { values = append(values, v) })
    })
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }

    render.Status(r, http.StatusOK)
    render.Render(w, r, &StackResponse{Info: details, Length: len(values), Values: values})
}

func (h *StackHandler) Text(w http.ResponseWriter, r *http.Request) {
    var text string
    err := h.service.Do(r.Context(), stackFromContext(r.Context()), "Render", func(s *stack.Stack[string]) error {
        var err error
        text, err = s.Render()
        return err
    })
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Status(r, http.StatusOK)
    render.PlainText(w, r, text)
}

func (h *StackHandler) Length(w http.ResponseWriter, r *http.Request) {
    name := stackFromContext(r.Context())
    var length int
    err := h.service.Do(r.Context(), name, "Length", func(s *stack.Stack[string]) error {
        length = s.Length()
        return nil
    })
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Status(r, http.StatusOK)
    render.Render(w, r, &LengthResponse{Stack: name, Length: length})
}

func (h *StackHandler) First(w http.ResponseWriter, r *http.Request) {
    h.value(w, r, "GetFirst", (*stack.Stack[string]).GetFirst)
}

func (h *StackHandler) Last(w http.ResponseWriter, r *http.Request) {
    h.value(w, r, "GetLast", (*stack.Stack[string]).GetLast)
}

func (h *StackHandler) Pop(w http.ResponseWriter, r *http.Request) {
    h.value(w, r, "Pop", (*stack.Stack[string]).Pop)
}

func (h *StackHandler) Get(w http.ResponseWriter, r *http.Request) {
    index, err := indexParam(r)
    if err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }
    h.value(w, r, "Get", func(s *stack.Stack[string]) (string, error) {
        return s.Get(index)
    })
}

// value runs a single-value stack operation and renders its result.
func (h *StackHandler) value(w http.ResponseWriter, r *http.Request, op string, fn func(*stack.Stack[string]) (string, error)) {
    name := stackFromContext(r.Context())
    var value string
    err := h.service.Do(r.Context(), name, op, func(s *stack.Stack[string]) error {
        var err error
        value, err = fn(s)
        return err
    })
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Status(r, http.StatusOK)
    render.Render(w, r, &ValueResponse{Stack: name, Value: value})
}

func (h *StackHandler) Push(w http.ResponseWriter, r *http.Request) {
    data := &ValueRequest{}
    if err := render.Bind(r, data); err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }

    name := stackFromContext(r.Context())
    err := h.service.Do(r.Context(), name, "Push", func(s *stack.Stack[string]) error {
        return s.Push(*data.Value)
    })
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Status(r, http.StatusCreated)
    render.Render(w, r, &ValueResponse{Stack: name, Value: *data.Value})
}

func (h *StackHandler) Bulk(w http.ResponseWriter, r *http.Request) {
    var values []string
    processor := func(item ValueRequest) error {
        if err := item.Bind(r); err != nil {
            return err
        }
        values = append(values, *item.Value)
        return nil
    }

    defer r.Body.Close()
    if err := ProcessJsonStream[ValueRequest](r.Body, processor); err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }

    name := stackFromContext(r.Context())
    err := h.service.Do(r.Context(), name, "Push", func(s *stack.Stack[string]) error {
        for _, v := range values {
            if err := s.Push(v); err != nil {
                return err
            }
        }
        return nil
    })
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Status(r, http.StatusCreated)
    render.Render(w, r, &BulkResponse{Stack: name, Pushed: len(values)})
}

func (h *StackHandler) Set(w http.ResponseWriter, r *http.Request) {
    index, err := indexParam(r)
    if err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }
    data := &ValueRequest{}
    if err := render.Bind(r, data); err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }

    name := stackFromContext(r.Context())
    err = h.service.Do(r.Context(), name, "Set", func(s *stack.Stack[string]) error {
        return s.Set(index, *data.Value)
    })
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Status(r, http.StatusOK)
    render.Render(w, r, &ValueResponse{Stack: name, Value: *data.Value})
}

func (h *StackHandler) RemoveAt(w http.ResponseWriter, r *http.Request) {
    index, err := indexParam(r)
    if err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }
    h.removal(w, r, "RemoveAt", func(s *stack.Stack[string]) (bool, error) {
        return s.RemoveAt(index)
    })
}

func (h *StackHandler) Remove(w http.ResponseWriter, r *http.Request) {
    value, err := valueParam(r)
    if err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }
    h.removal(w, r, "Remove", func(s *stack.Stack[string]) (bool, error) {
        return s.Remove(value)
    })
}

func (h *StackHandler) RemoveFirst(w http.ResponseWriter, r *http.Request) {
    h.removal(w, r, "RemoveFirst", func(s *stack.Stack[string]) (bool, error) {
        return true, s.RemoveFirst()
    })
}

func (h *StackHandler) RemoveLast(w http.ResponseWriter, r *http.Request) {
    h.removal(w, r, "RemoveLast", func(s *stack.Stack[string]) (bool, error) {
        before := s.Length()
        if err := s.RemoveLast(); err != nil {
            return false, err
        }
        return s.Length() < before, nil
    })
}

func (h *StackHandler) removal(w http.ResponseWriter, r *http.Request, op string, fn func(*stack.Stack[string]) (bool, error)) {
    name := stackFromContext(r.Context())
    var removed bool
    err := h.service.Do(r.Context(), name, op, func(s *stack.Stack[string]) error {
        var err error
        removed, err = fn(s)
        return err
    })
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Status(r, http.StatusOK)
    render.Render(w, r, &RemovedResponse{Stack: name, Removed: removed})
}

func (h *StackHandler) Clear(w http.ResponseWriter, r *http.Request) {
    err := h.service.Do(r.Context(), stackFromContext(r.Context()), "Clear", func(s *stack.Stack[string]) error {
        s.Clear()
        return nil
    })
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.NoContent(w, r)
}

func (h *StackHandler) AddAll(w http.ResponseWriter, r *http.Request) {
    from := r.URL.Query().Get("from")
    if from == "" {
        render.Render(w, r, ErrInvalidRequest(errors.New("missing required query parameter 'from'")))
        return
    }
    if err := h.service.AddAll(r.Context(), stackFromContext(r.Context()), from); err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.NoContent(w, r)
}

func (h *StackHandler) Contains(w http.ResponseWriter, r *http.Request) {
    value, err := valueParam(r)
    if err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }

    name := stackFromContext(r.Context())
    var contains bool
    err = h.service.Do(r.Context(), name, "Contains", func(s *stack.Stack[string]) error {
        var err error
        contains, err = s.Contains(value)
        return err
    })
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Status(r, http.StatusOK)
    render.Render(w, r, &ContainsResponse{Stack: name, Value: value, Contains: contains})
}

func (h *StackHandler) IndexOf(w http.ResponseWriter, r *http.Request) {
    value, err := valueParam(r)
    if err != nil {
        render.Render(w, r, ErrInvalidRequest(err))
        return
    }

    name := stackFromContext(r.Context())
    var index int
    err = h.service.Do(r.Context(), name, "IndexOf", func(s *stack.Stack[string]) error {
        var err error
        index, err = s.IndexOf(value)
        return err
    })
    if err != nil {
        render.Render(w, r, ErrFromService(err))
        return
    }
    render.Status(r, http.StatusOK)
    render.Render(w, r, &IndexResponse{Stack: name, Value: value, Index: index})
}

func indexParam(r *http.Request) (int, error) {
    index, err := strconv.Atoi(chi.URLParam(r, "index"))
    if err != nil {
        return 0, errors.New("index must be an integer")
    }
    return index, nil
}

func valueParam(r *http.Request) (string, error) {
    query := r.URL.Query()
    if !query.Has("value") {
        return "", errors.New("missing required query parameter 'value'")
    }
    return query.Get("value"), nil
}

/* *** Requests & Responses *** */

type ValueRequest struct {
    Value *string `json:"value"`
}

func (v *ValueRequest) Bind(r *http.Request) error {
    if v.Value == nil {
        return errors.New("missing required value")
    }
    return nil
}

type ValueResponse struct {
    Stack string `json:"stack"`
    Value string `json:"value"`
}

func (v *ValueResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}

type NamesResponse struct {
    Stacks []string `json:"stacks"`
}

func (n *NamesResponse) Render(w http.ResponseWriter, r *http.Request) error {
    if n.Stacks == nil {
        n.Stacks = []string{}
    }
    return nil
}

type StackResponse struct {
    *store.Info
    Length int      `json:"length"`
    Values []string `json:"values"`
}

func (s *StackResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}

type LengthResponse struct {
    Stack  string `json:"stack"`
    Length int    `json:"length"`
}

func (l *LengthResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}

type BulkResponse struct {
    Stack  string `json:"stack"`
    Pushed int    `json:"pushed"`
}

func (b *BulkResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}

type RemovedResponse struct {
    Stack   string `json:"stack"`
    Removed bool   `json:"removed"`
}

func (rr *RemovedResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}

type ContainsResponse struct {
    Stack    string `json:"stack"`
    Value    string `json:"value"`
    Contains bool   `json:"contains"`
}

func (c *ContainsResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}

type IndexResponse struct {
    Stack string `json:"stack"`
    Value string `json:"value"`
    Index int    `json:"index"`
}

func (i *IndexResponse) Render(w http.ResponseWriter, r *http.Request) error {
    return nil
}
