package verifier

import (
	"errors"
	"fmt"
	"sync"
)

// Keys recorded by the scenario
const (
	KeyAdminAccountID  = "admin_account_id"
	KeyPlayerAccountID = "test_player_account_id"
	KeyPlayerID        = "test_player_id"
)

var (
	ErrKeyAlreadySet = errors.New("context key already set")
	ErrKeyNotSet     = errors.New("context key not set")
)

// Context carries ids between steps. Each key can be written once.
type Context struct {
	mu     sync.RWMutex
	values map[string]int64
}

func NewContext() *Context {
	return &Context{values: make(map[string]int64)}
}

func (c *Context) Set(key string, value int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; ok {
		return fmt.Errorf("%w: %s", ErrKeyAlreadySet, key)
	}
	c.values[key] = value
	return nil
}

func (c *Context) Get(key string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrKeyNotSet, key)
	}
	return v, nil
}

// Snapshot returns a copy of every recorded value
func (c *Context) Snapshot() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int64, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}
