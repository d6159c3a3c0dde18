package redisstore

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestConfigStorageUsesPrefix(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()

	cfg := Config{Prefix: "tokodash:session:"}
	s := cfg.Storage(rdb)
	assert.Equal(t, "tokodash:session:abc", s.key("abc"))
}

func TestNewStorageRejectsBadURL(t *testing.T) {
	cfg := Config{URL: "not-a-redis-url", Prefix: "p:"}
	s, err := cfg.NewStorage()
	assert.Error(t, err)
	assert.Nil(t, s)
}
