package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

const settingsKey = "settings"

// SettingsStore keeps admin setting overrides in one Redis hash, one field per
// section, each holding a JSON object.
type SettingsStore struct {
	client *RedisClient
}

// NewSettingsStore creates a SettingsStore backed by the given RedisClient.
func NewSettingsStore(r *RedisClient) *SettingsStore {
	return &SettingsStore{client: r}
}

// All returns every saved section.
func (s *SettingsStore) All(ctx context.Context) (map[string]json.RawMessage, error) {
	vals, err := s.client.Client().HGetAll(ctx, settingsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("settings get: %w", err)
	}
	out := make(map[string]json.RawMessage, len(vals))
	for section, raw := range vals {
		out[section] = json.RawMessage(raw)
	}
	return out, nil
}

// Save replaces one section.
func (s *SettingsStore) Save(ctx context.Context, section string, settings json.RawMessage) error {
	if err := s.client.Client().HSet(ctx, settingsKey, section, string(settings)).Err(); err != nil {
		return fmt.Errorf("settings save: %w", err)
	}
	return nil
}
