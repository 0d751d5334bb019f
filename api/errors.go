package api

import (
    "errors"
    "github.com/aleph-zero/linkstack/service/store"
    "github.com/aleph-zero/linkstack/stack"
    "github.com/go-chi/render"
    "net/http"
)

type ErrResponse struct {
    Err            error `json:"-"`
    HTTPStatusCode int   `json:"-"`

    StatusText string `json:"status"`
    ErrorText  string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
    render.Status(r, e.HTTPStatusCode)
    return nil
}

func newErrResponse(err error, status int) render.Renderer {
    return &ErrResponse{
        Err:            err,
        HTTPStatusCode: status,
        StatusText:     http.StatusText(status),
        ErrorText:      err.Error(),
    }
}

func ErrInvalidRequest(err error) render.Renderer {
    return newErrResponse(err, http.StatusBadRequest)
}

func ErrNotFound(err error) render.Renderer {
    return newErrResponse(err, http.StatusNotFound)
}

func ErrConflict(err error) render.Renderer {
    return newErrResponse(err, http.StatusConflict)
}

func ErrInternalServerError(err error) render.Renderer {
    return newErrResponse(err, http.StatusInternalServerError)
}

// ErrFromService maps store and stack errors onto HTTP statuses.
func ErrFromService(err error) render.Renderer {
    switch {
    case errors.Is(err, store.Error{ErrorCode: store.NoSuchStack}):
        return ErrNotFound(err)
    case errors.Is(err, store.Error{ErrorCode: store.StackExists}),
        errors.Is(err, stack.ErrEmptyStack):
        return ErrConflict(err)
    case errors.Is(err, store.Error{ErrorCode: store.InvalidName}),
        errors.Is(err, stack.ErrIndexOutOfRange),
        errors.Is(err, stack.ErrInvalidArgument):
        return ErrInvalidRequest(err)
    default:
        return ErrInternalServerError(err)
    }
}
