package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Makepad-fr/menuadmin/internal/model"
)

// Endpoint describes where one collection lives on the backend.
type Endpoint struct {
	// ListPath is read with GET.
	ListPath string
	// Extract is the jq expression selecting the collection from the
	// response envelope. Defaults to ".data".
	Extract string
	// TogglePath receives POST {id, field, value}.
	TogglePath string
	// DeletePath is suffixed with "/<id>" and sent a DELETE.
	DeletePath string
}

// TogglePayload is the body of a toggle request.
type TogglePayload struct {
	ID    model.ID `json:"id"`
	Field string   `json:"field"`
	Value bool     `json:"value"`
}

// Resource is a remotelist.Backend over HTTP for records of type T.
type Resource[T any] struct {
	name    string
	client  *Client
	ep      Endpoint
	extract *Extractor
}

var ErrNotSupported = errors.New("operation not supported by this endpoint")

func NewResource[T any](c *Client, name string, ep Endpoint) (*Resource[T], error) {
	if ep.ListPath == "" {
		return nil, fmt.Errorf("%s: empty list path", name)
	}
	if ep.Extract == "" {
		ep.Extract = ".data"
	}
	ex, err := NewExtractor(ep.Extract)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Resource[T]{name: name, client: c, ep: ep, extract: ex}, nil
}

func (r *Resource[T]) Name() string       { return r.name }
func (r *Resource[T]) Endpoint() Endpoint { return r.ep }

// List fetches the collection and decodes each element into T.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	doc, err := r.client.GetJSON(ctx, r.ep.ListPath)
	if err != nil {
		return nil, err
	}
	raw, err := r.extract.Extract(doc)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	out := make([]T, 0, len(raw))
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.name, err)
	}
	return out, nil
}

func (r *Resource[T]) SetField(ctx context.Context, id, field string, value bool) error {
	if r.ep.TogglePath == "" {
		return fmt.Errorf("%s toggle: %w", r.name, ErrNotSupported)
	}
	_, err := r.client.Do(ctx, http.MethodPost, r.ep.TogglePath, TogglePayload{
		ID:    model.ID(id),
		Field: field,
		Value: value,
	})
	return err
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if r.ep.DeletePath == "" {
		return fmt.Errorf("%s delete: %w", r.name, ErrNotSupported)
	}
	p := strings.TrimRight(r.ep.DeletePath, "/") + "/" + url.PathEscape(id)
	_, err := r.client.Do(ctx, http.MethodDelete, p, nil)
	return err
}
