package session

import (
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
)

// FiberCache adapts a Fiber session to Cache. Changes are only persisted
// once Commit is called.
type FiberCache struct {
	sess *fibersession.Session
}

func NewFiberCache(sess *fibersession.Session) *FiberCache {
	return &FiberCache{sess: sess}
}

func (f *FiberCache) Get(key string) (string, bool) {
	v, ok := f.sess.Get(key).(string)
	return v, ok
}

func (f *FiberCache) Set(key, value string) {
	f.sess.Set(key, value)
}

func (f *FiberCache) Delete(key string) {
	f.sess.Delete(key)
}

// Commit saves the underlying session to its storage.
func (f *FiberCache) Commit() error {
	return f.sess.Save()
}
