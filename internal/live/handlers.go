package live

import (
	"sort"
	"sync"

	"github.com/avalonarena/spectate/internal/logging"
	"github.com/avalonarena/spectate/internal/protocol"
)

// Handler receives one decoded event. Handlers run on the read goroutine in
// transport order, so they must not block.
type Handler func(env *protocol.Envelope, payload any)

type registration struct {
	id int
	fn Handler
}

// registry maps event types to handlers. The wildcard entry receives every
// event after the type's own handlers.
type registry struct {
	mu       sync.Mutex
	nextID   int
	handlers map[string][]registration
}

func newRegistry() *registry {
	return &registry{handlers: make(map[string][]registration)}
}

// add registers a handler and returns its subscription id.
func (r *registry) add(event string, fn Handler) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.handlers[event] = append(r.handlers[event], registration{id: r.nextID, fn: fn})
	return r.nextID
}

// remove drops a subscription. It reports whether anything was removed.
func (r *registry) remove(event string, id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	regs := r.handlers[event]
	for i := range regs {
		if regs[i].id == id {
			r.handlers[event] = append(regs[:i:i], regs[i+1:]...)
			return true
		}
	}
	return false
}

// snapshot returns the handlers for an event plus the wildcards, in
// registration order, without holding the lock during dispatch.
func (r *registry) snapshot(event string) []registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	exact := r.handlers[event]
	wild := r.handlers[protocol.Wildcard]
	out := make([]registration, 0, len(exact)+len(wild))
	out = append(out, exact...)
	out = append(out, wild...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// dispatch runs every matching handler, isolating panics so one bad handler
// cannot kill the read loop or starve the rest.
func (r *registry) dispatch(env *protocol.Envelope, payload any, log *logging.Logger) {
	for _, reg := range r.snapshot(env.Type) {
		call(reg.fn, env, payload, log)
	}
}

func call(fn Handler, env *protocol.Envelope, payload any, log *logging.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			log.HandlerPanic(env.Type, rec)
		}
	}()
	fn(env, payload)
}
