package chathub

import (
	"sort"
	"sync"
)

// Presence is the in-memory registry of connected clients and their room
// subscriptions. It keeps a forward map (room -> connections) and an inverse
// map (connection -> rooms) so disconnect cleans up in O(subscriptions).
// Both maps mutate under one lock: a reader never observes a connection
// present in one map and absent from the other.
type Presence struct {
	mu      sync.RWMutex
	clients map[string]Client            // connID -> client
	rooms   map[uint]map[string]Client   // roomID -> connID -> client
	conns   map[string]map[uint]struct{} // connID -> subscribed roomIDs
}

func NewPresence() *Presence {
	return &Presence{
		clients: make(map[string]Client),
		rooms:   make(map[uint]map[string]Client),
		conns:   make(map[string]map[uint]struct{}),
	}
}

// Add registers a connected client with no subscriptions yet. Adding an
// already-registered connection keeps its subscriptions.
func (p *Presence) Add(c Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.clients[c.GetConnID()]; ok {
		return
	}
	p.clients[c.GetConnID()] = c
	p.conns[c.GetConnID()] = make(map[uint]struct{})
}

// Connected reports whether the connection is registered.
func (p *Presence) Connected(connID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.clients[connID]
	return ok
}

// Subscribe adds the connection to a room's subscriber set. It reports false
// if the connection is not registered.
func (p *Presence) Subscribe(connID string, roomID uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.clients[connID]
	if !ok {
		return false
	}
	if p.rooms[roomID] == nil {
		p.rooms[roomID] = make(map[string]Client)
	}
	p.rooms[roomID][connID] = c
	p.conns[connID][roomID] = struct{}{}
	return true
}

// Unsubscribe removes the connection from one room.
func (p *Presence) Unsubscribe(connID string, roomID uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.conns[connID][roomID]; !ok {
		return false
	}
	p.removeFromRoom(connID, roomID)
	delete(p.conns[connID], roomID)
	return true
}

// Remove unregisters the connection entirely and returns the rooms it was
// subscribed to. Every room's subscriber set is cleaned: a stale entry would
// silently break fanout and leak memory over the life of the process.
func (p *Presence) Remove(connID string) ([]uint, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	roomSet, ok := p.conns[connID]
	if !ok {
		return nil, false
	}
	rooms := make([]uint, 0, len(roomSet))
	for roomID := range roomSet {
		p.removeFromRoom(connID, roomID)
		rooms = append(rooms, roomID)
	}
	delete(p.conns, connID)
	delete(p.clients, connID)
	return rooms, true
}

func (p *Presence) removeFromRoom(connID string, roomID uint) {
	delete(p.rooms[roomID], connID)
	if len(p.rooms[roomID]) == 0 {
		delete(p.rooms, roomID)
	}
}

// Subscribers returns the clients currently subscribed to a room.
func (p *Presence) Subscribers(roomID uint) []Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	subs := make([]Client, 0, len(p.rooms[roomID]))
	for _, c := range p.rooms[roomID] {
		subs = append(subs, c)
	}
	return subs
}

// Snapshot returns the distinct user ids currently subscribed to a room,
// sorted for stable output. Best effort: it is display state, not a delivery
// guarantee.
func (p *Presence) Snapshot(roomID uint) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	seen := make(map[string]struct{}, len(p.rooms[roomID]))
	users := make([]string, 0, len(p.rooms[roomID]))
	for _, c := range p.rooms[roomID] {
		if _, ok := seen[c.GetUserID()]; ok {
			continue
		}
		seen[c.GetUserID()] = struct{}{}
		users = append(users, c.GetUserID())
	}
	sort.Strings(users)
	return users
}
