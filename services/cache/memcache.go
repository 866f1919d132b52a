package cache

import (
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// keyPrefix namespaces every key written by the price checker
const keyPrefix = "pricechecker:"

// MemcacheService implements CacheService using memcache
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService creates a new memcache service for a comma separated server list
func NewMemcacheService(serverAddrs string) *MemcacheService {
	var servers []string
	for _, addr := range strings.Split(serverAddrs, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			servers = append(servers, addr)
		}
	}
	client := memcache.New(servers...)
	client.Timeout = 2 * time.Second
	return &MemcacheService{client: client}
}

// Ping checks that every configured server is reachable
func (m *MemcacheService) Ping() error {
	return m.client.Ping()
}

// Get retrieves a value from memcache
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(keyPrefix + key)
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores a value in memcache; sub-second expirations are rounded up to one second
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	seconds := int32(expiration / time.Second)
	if seconds == 0 && expiration > 0 {
		seconds = 1
	}
	return m.client.Set(&memcache.Item{
		Key:        keyPrefix + key,
		Value:      value,
		Expiration: seconds,
	})
}

// Delete removes a value from memcache; deleting a missing key is not an error
func (m *MemcacheService) Delete(key string) error {
	err := m.client.Delete(keyPrefix + key)
	if err == memcache.ErrCacheMiss {
		return nil
	}
	return err
}
