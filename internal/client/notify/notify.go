// Package notify carries user-facing transaction and load notifications.
// Each notification has an id; a new one under the same id replaces the old
// one instead of stacking.
package notify

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

type Notifier interface {
	Loading(message, id string)
	Success(message, id string)
	Error(message, id string)
}

type Level int

const (
	LevelLoading Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelLoading:
		return "..."
	case LevelSuccess:
		return "ok"
	default:
		return "error"
	}
}

// Notification is the live entry for one id.
type Notification struct {
	ID      string
	Level   Level
	Message string
}

// Console prints every notification to w and keeps the latest one per id.
type Console struct {
	mu   sync.Mutex
	w    io.Writer
	live map[string]Notification
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w, live: make(map[string]Notification)}
}

func (c *Console) Loading(message, id string) { c.put(LevelLoading, message, id) }
func (c *Console) Success(message, id string) { c.put(LevelSuccess, message, id) }
func (c *Console) Error(message, id string)   { c.put(LevelError, message, id) }

func (c *Console) put(level Level, message, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.live[id] = Notification{ID: id, Level: level, Message: message}
	fmt.Fprintf(c.w, "[%s] %s\n", level, message)
}

// Get returns the live notification for id.
func (c *Console) Get(id string) (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.live[id]
	return n, ok
}

// Live lists the current notifications ordered by id.
func (c *Console) Live() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, 0, len(c.live))
	for _, n := range c.live {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Console) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.live, id)
}
