package room

import (
	"math/rand"
	"sync"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"landlord/internal/session"
)

// Registry is the process-wide map of room name to Room, guarded by a
// single RWMutex (SPEC_FULL §5 shared resources): RoomCount and other
// read-only lookups take the read lock, while Join's create-on-first-
// reference path takes the write lock.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	logger zerolog.Logger
	clock  quartz.Clock
}

// NewRegistry builds an empty room registry. clock is threaded through to
// every Room it creates, so tests can supply a quartz.Mock.
func NewRegistry(logger zerolog.Logger, clock quartz.Clock) *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		logger: logger,
		clock:  clock,
	}
}

// Join routes a session into the named room, creating the room on first
// reference. Each room's shuffle RNG is seeded independently so one
// room's deals don't predict another's.
func (reg *Registry) Join(roomName string, sess *session.Session) error {
	reg.mu.Lock()
	r, ok := reg.rooms[roomName]
	if !ok {
		r = New(roomName, reg.logger, rand.New(rand.NewSource(rand.Int63())), reg.clock)
		reg.rooms[roomName] = r
	}
	reg.mu.Unlock()

	return r.Join(sess)
}

// RoomCount reports how many rooms currently exist, for diagnostics.
func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
