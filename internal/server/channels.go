package server

import "sync"

// Channel scoping. Clients address channels by their bare name
// (monopolis:current_turn, lobbyList); the server prefixes each with the
// owning scope before storing, so two lobbies never collide.
const (
	GlobalScope      = "global"
	LobbyListChannel = "lobbyList"
)

func scopedChannel(scope, channel string) string {
	return scope + "|" + channel
}

// ChannelStore keeps at most one authoritative value per scoped channel
// plus the set of connections subscribed to it. New subscribers get the
// cached value replayed; registering an already-cached channel returns
// the cached value unchanged.
type ChannelStore struct {
	values map[string]any
	subs   map[string]map[string]struct{} // scoped channel -> connectionIDs
	mu     sync.RWMutex
}

func NewChannelStore() *ChannelStore {
	return &ChannelStore{
		values: make(map[string]any),
		subs:   make(map[string]map[string]struct{}),
	}
}

// Register subscribes a connection and seeds the channel with defaultValue
// if nothing was published yet. The returned value is what the subscriber
// should be sent as its init snapshot.
func (cs *ChannelStore) Register(connectionID, scoped string, defaultValue any) any {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.subs[scoped] == nil {
		cs.subs[scoped] = make(map[string]struct{})
	}
	cs.subs[scoped][connectionID] = struct{}{}

	if value, exists := cs.values[scoped]; exists {
		return value
	}
	cs.values[scoped] = defaultValue
	return defaultValue
}

// Subscribe adds a connection without seeding; the second return reports
// whether a cached value exists.
func (cs *ChannelStore) Subscribe(connectionID, scoped string) (any, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.subs[scoped] == nil {
		cs.subs[scoped] = make(map[string]struct{})
	}
	cs.subs[scoped][connectionID] = struct{}{}
	value, exists := cs.values[scoped]
	return value, exists
}

// Set replaces the authoritative value and returns the subscribers to
// notify.
func (cs *ChannelStore) Set(scoped string, value any) []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.values[scoped] = value
	subscribers := make([]string, 0, len(cs.subs[scoped]))
	for connectionID := range cs.subs[scoped] {
		subscribers = append(subscribers, connectionID)
	}
	return subscribers
}

func (cs *ChannelStore) Get(scoped string) (any, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	value, exists := cs.values[scoped]
	return value, exists
}

// Unsubscribe removes a connection from one channel.
func (cs *ChannelStore) Unsubscribe(connectionID, scoped string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if subscribers, exists := cs.subs[scoped]; exists {
		delete(subscribers, connectionID)
	}
}

// UnsubscribeAll removes a closed connection from every channel.
func (cs *ChannelStore) UnsubscribeAll(connectionID string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for _, subscribers := range cs.subs {
		delete(subscribers, connectionID)
	}
}
