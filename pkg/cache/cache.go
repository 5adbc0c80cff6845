package cache

import (
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"

	"tgpay/pkg/logger"
	"tgpay/pkg/utils"
)

var (
	Module      = fx.Provide(New)
	ErrNotFound = errors.New("cache: key not found")
)

type (
	Params struct {
		fx.In
		Logger logger.Logger
	}

	ICache interface {
		// SaveObj stores value as json. ttl <= 0 keeps it until deleted.
		SaveObj(key string, value interface{}, ttl time.Duration) error
		GetObj(key string, value interface{}) error
		Delete(key string) error
		Keys(prefix string) []string
	}

	cache struct {
		logger   logger.Logger
		expires  map[string]time.Time
		memCache map[string][]byte
		m        sync.RWMutex
	}
)

func New(p Params) ICache {
	return &cache{
		logger:   p.Logger,
		memCache: map[string][]byte{},
		expires:  map[string]time.Time{},
	}
}

func (c *cache) SaveObj(key string, value interface{}, ttl time.Duration) error {
	c.m.Lock()
	defer c.m.Unlock()

	c.memCache[key] = utils.Marshal(value)
	if ttl > 0 {
		c.expires[key] = time.Now().Add(ttl)
	} else {
		delete(c.expires, key)
	}
	return nil
}

func (c *cache) GetObj(key string, value interface{}) error {
	c.m.RLock()
	cacheVal, ok := c.memCache[key]
	exp, hasExp := c.expires[key]
	c.m.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if hasExp && time.Now().After(exp) {
		_ = c.Delete(key)
		return ErrNotFound
	}
	return utils.Unmarshal(cacheVal, value)
}

func (c *cache) Delete(key string) error {
	c.m.Lock()
	defer c.m.Unlock()

	delete(c.memCache, key)
	delete(c.expires, key)
	return nil
}

// Keys lists live keys starting with prefix.
func (c *cache) Keys(prefix string) []string {
	c.m.RLock()
	defer c.m.RUnlock()

	now := time.Now()
	var keys []string
	for k := range c.memCache {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if exp, ok := c.expires[k]; ok && now.After(exp) {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}
