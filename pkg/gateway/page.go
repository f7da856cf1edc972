package gateway

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// Page is the canonical shape of every list answer after normalisation
type Page[T any] struct {
	Items       []T `json:"items"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Total       int `json:"total"`
	// Malformed counts list entries that could not be decoded and were dropped.
	Malformed int `json:"-"`
}

// EmptyPage is the value a list shows before anything was loaded
func EmptyPage[T any]() Page[T] {
	return Page[T]{Items: []T{}, TotalPages: 1, CurrentPage: 1}
}

// DecodePage normalises a list response into a Page.
//
// The rental API is only loosely consistent: the list can sit under
// data.<key>, be data itself, or be the whole body; it can also be missing or
// not an array. Every variant maps to a Page with a non-nil Items slice and
// TotalPages >= 1.
func DecodePage[T any](body []byte, key string) (Page[T], error) {
	page := EmptyPage[T]()

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return page, nil
	}
	if body[0] == '[' {
		page.Items, page.Malformed = decodeItems[T](body)
		page.Total = len(page.Items)
		return page, nil
	}

	var env struct {
		Data jsoniter.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return page, errors.Wrap(err, "decode list envelope")
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 {
		return page, nil
	}
	switch data[0] {
	case '[':
		page.Items, page.Malformed = decodeItems[T](data)
		page.Total = len(page.Items)
	case '{':
		var fields map[string]jsoniter.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return page, errors.Wrap(err, "decode list data")
		}
		if raw, ok := fields[key]; ok {
			page.Items, page.Malformed = decodeItems[T](raw)
		}
		page.TotalPages = positiveOr(fields["totalPages"], 1)
		page.CurrentPage = positiveOr(fields["currentPage"], 1)
		page.Total = positiveOr(fields["total"], len(page.Items))
	}
	return page, nil
}

// decodeItems decodes a JSON array element by element. Anything that is not an
// array yields an empty list; undecodable elements are dropped and counted.
func decodeItems[T any](raw jsoniter.RawMessage) ([]T, int) {
	items := []T{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return items, 0
	}
	var elems []jsoniter.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return items, 0
	}
	malformed := 0
	for _, elem := range elems {
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			malformed++
			continue
		}
		items = append(items, item)
	}
	return items, malformed
}

// positiveOr reads a loosely typed number and falls back when it is absent,
// falsy or not positive
func positiveOr(raw jsoniter.RawMessage, fallback int) int {
	if len(raw) == 0 {
		return fallback
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback
	}
	n, err := cast.ToIntE(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
