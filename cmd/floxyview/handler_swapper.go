package main

import (
	"net/http"
	"sync/atomic"
)

// handlerSwapper is an http.Handler whose target can be replaced while
// serving. serve uses it to apply reloaded settings without a restart.
type handlerSwapper struct {
	current atomic.Pointer[http.Handler]
}

func newHandlerSwapper(h http.Handler) *handlerSwapper {
	s := &handlerSwapper{}
	s.Swap(h)
	return s
}

func (s *handlerSwapper) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	(*s.current.Load()).ServeHTTP(w, r)
}

// Swap replaces the handler for subsequent requests.
func (s *handlerSwapper) Swap(h http.Handler) {
	s.current.Store(&h)
}
