package navigation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
)

// preferenceKey is the Redis key the preference blob lives under.
const preferenceKey = "cadence:navigation:preferences"

// PreferenceStore loads and saves the persisted navigation preferences.
// Implementations must round-trip exactly the Preferences fields and return
// defaults when nothing has been saved yet.
type PreferenceStore interface {
	Load(ctx context.Context) (Preferences, error)
	Save(ctx context.Context, prefs Preferences) error
}

// RedisPreferenceStore persists preferences as a JSON blob in Redis.
type RedisPreferenceStore struct {
	client *redis.Client
	key    string
}

// NewRedisPreferenceStore creates a Redis-backed preference store. An empty
// key uses the default.
func NewRedisPreferenceStore(client *redis.Client, key string) *RedisPreferenceStore {
	if key == "" {
		key = preferenceKey
	}
	return &RedisPreferenceStore{client: client, key: key}
}

// Load reads the preference blob. A missing key yields defaults; a corrupt
// blob is deleted and also yields defaults, since preferences are
// reconstructible state.
func (s *RedisPreferenceStore) Load(ctx context.Context) (Preferences, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return DefaultPreferences(), nil
	} else if err != nil {
		return DefaultPreferences(), fmt.Errorf("redis get failed: %w", err)
	}

	prefs := DefaultPreferences()
	if err := json.Unmarshal([]byte(data), &prefs); err != nil {
		s.client.Del(ctx, s.key)
		return DefaultPreferences(), nil
	}
	if prefs.LastAccessedDepartments == nil {
		prefs.LastAccessedDepartments = make(map[string]string)
	}
	return prefs, nil
}

// Save writes the preference blob. No TTL: preferences are durable until
// overwritten.
func (s *RedisPreferenceStore) Save(ctx context.Context, prefs Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// MemoryPreferenceStore keeps preferences in process memory. Used in tests
// and when no Redis URL is configured.
type MemoryPreferenceStore struct {
	mu    sync.Mutex
	prefs Preferences
	saved bool
}

// NewMemoryPreferenceStore creates an empty in-memory preference store.
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{}
}

// Load returns the last saved preferences, or defaults before any save.
func (s *MemoryPreferenceStore) Load(ctx context.Context) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return DefaultPreferences(), nil
	}
	return copyPreferences(s.prefs), nil
}

// Save stores a copy of the preferences.
func (s *MemoryPreferenceStore) Save(ctx context.Context, prefs Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = copyPreferences(prefs)
	s.saved = true
	return nil
}

func copyPreferences(prefs Preferences) Preferences {
	out := Preferences{
		LastAccessedDepartments: make(map[string]string, len(prefs.LastAccessedDepartments)),
		IsBreadcrumbMode:        prefs.IsBreadcrumbMode,
	}
	for userID, deptID := range prefs.LastAccessedDepartments {
		out.LastAccessedDepartments[userID] = deptID
	}
	return out
}
