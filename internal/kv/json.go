package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// GetJSON decodes the value under key into T. found is false when the key is absent.
func GetJSON[T any](ctx context.Context, s Store, key string) (v T, found bool, err error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("kv: decode %q: %w", key, err)
	}
	return v, true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv: encode %q: %w", key, err)
	}
	return s.Set(ctx, key, b)
}

// UpdateJSON is Update with decoding. fn reports whether next should be written.
func UpdateJSON[T any](ctx context.Context, s Store, key string, fn func(cur T, found bool) (next T, write bool, err error)) (T, error) {
	var out T
	err := s.Update(ctx, key, func(raw json.RawMessage) (json.RawMessage, error) {
		var cur T
		found := raw != nil
		if found {
			if err := json.Unmarshal(raw, &cur); err != nil {
				return nil, fmt.Errorf("kv: decode %q: %w", key, err)
			}
		}

		next, write, err := fn(cur, found)
		if err != nil {
			return nil, err
		}
		out = next
		if !write {
			return nil, nil
		}

		b, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("kv: encode %q: %w", key, err)
		}
		return b, nil
	})
	return out, err
}

// ScanJSON decodes every value under prefix, in key order.
func ScanJSON[T any](ctx context.Context, s Store, prefix string) ([]T, error) {
	entries, err := s.Scan(ctx, prefix)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(entries))
	for _, e := range entries {
		var v T
		if err := json.Unmarshal(e.Value, &v); err != nil {
			return nil, fmt.Errorf("kv: decode %q: %w", e.Key, err)
		}
		out = append(out, v)
	}
	return out, nil
}
