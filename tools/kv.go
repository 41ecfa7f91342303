package tools

import (
	"context"
	"fmt"
	"sync"
)

// KVStore is the in-memory store backing the kv demo tools
type KVStore struct {
	mu   sync.RWMutex
	data map[string]interface{}
}

// NewKVStore creates an empty KVStore
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string]interface{})}
}

// KVGet reads a value from the store
type KVGet struct {
	store *KVStore
}

// NewKVGet creates the kv_get executor
func NewKVGet(store *KVStore) *KVGet { return &KVGet{store: store} }

func (k *KVGet) Name() string        { return "kv_get" }
func (k *KVGet) Category() string    { return "kv" }
func (k *KVGet) Description() string { return "Get value from key-value store" }

// Execute reads args["key"]
func (k *KVGet) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	key, _ := args["key"].(string)
	if key == "" {
		return map[string]interface{}{
			"error":   "Missing required parameter: key",
			"example": `{"key": "greeting"}`,
		}, nil
	}

	k.store.mu.RLock()
	value, ok := k.store.data[key]
	k.store.mu.RUnlock()

	if !ok {
		return map[string]interface{}{
			"error": fmt.Sprintf("Key not found: %s", key),
		}, nil
	}

	return map[string]interface{}{
		"key":   key,
		"value": value,
	}, nil
}

// KVSet writes a value into the store
type KVSet struct {
	store *KVStore
}

// NewKVSet creates the kv_set executor
func NewKVSet(store *KVStore) *KVSet { return &KVSet{store: store} }

func (k *KVSet) Name() string        { return "kv_set" }
func (k *KVSet) Category() string    { return "kv" }
func (k *KVSet) Description() string { return "Set value in key-value store" }

// Execute stores args["value"] under args["key"]
func (k *KVSet) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	key, _ := args["key"].(string)
	if key == "" {
		return map[string]interface{}{
			"error":   "Missing required parameter: key",
			"example": `{"key": "greeting", "value": "hello"}`,
		}, nil
	}

	value, ok := args["value"]
	if !ok {
		return map[string]interface{}{
			"error": "Missing required parameter: value",
		}, nil
	}

	k.store.mu.Lock()
	k.store.data[key] = value
	k.store.mu.Unlock()

	return map[string]interface{}{
		"key":    key,
		"value":  value,
		"stored": true,
	}, nil
}
