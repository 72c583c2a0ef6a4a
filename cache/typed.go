package cache

import (
	"context"
	"encoding/json"
	"time"
)

// The cache stores opaque JSON blobs. These helpers put a typed boundary on
// top: values round-trip through encoding/json, so anything JSON-serializable
// is stored and returned deep-equal.

// Get retrieves and decodes the value for key.
func Get[T any](ctx context.Context, s CacheService, key string) (T, bool, error) {
	var value T

	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return value, false, err
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false, newError("get", key, "failed to decode cached value", err)
	}
	return value, true, nil
}

// Set encodes value and stores it under key with the given ttl.
func Set[T any](ctx context.Context, s CacheService, key string, value T, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return newError("set", key, "failed to encode value", err)
	}
	return s.Set(ctx, key, raw, ttl)
}

// GetOrSet returns the decoded cached value for key, or invokes producer,
// stores its encoded result with the given ttl, and returns it.
func GetOrSet[T any](ctx context.Context, s CacheService, key string, producer func(ctx context.Context) (T, error), ttl time.Duration) (T, error) {
	var value T

	raw, err := s.GetOrSet(ctx, key, func(ctx context.Context) ([]byte, error) {
		produced, err := producer(ctx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(produced)
		if err != nil {
			return nil, newError("get_or_set", key, "failed to encode produced value", err)
		}
		return encoded, nil
	}, ttl)
	if err != nil {
		return value, err
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		return value, newError("get_or_set", key, "failed to decode cached value", err)
	}
	return value, nil
}
