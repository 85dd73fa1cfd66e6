// Package notify collects user-facing messages raised while serving a request.
// Handlers attach a Tray to the request context; services push to whatever
// tray the context carries and silently drop messages when there is none.
package notify

import (
	"context"
	"fmt"
	"sync"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a single transient message for the client.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Tray is a concurrency-safe list of notifications.
type Tray struct {
	mu    sync.Mutex
	items []Notification
}

func NewTray() *Tray {
	return &Tray{}
}

func (t *Tray) Add(level Level, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, Notification{Level: level, Message: msg})
}

// Items returns a copy of the collected notifications, never nil.
func (t *Tray) Items() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Notification, len(t.items))
	copy(out, t.items)
	return out
}

type trayKey struct{}

// WithTray returns a context carrying tray.
func WithTray(ctx context.Context, tray *Tray) context.Context {
	return context.WithValue(ctx, trayKey{}, tray)
}

// FromContext returns the tray attached to ctx, or nil.
func FromContext(ctx context.Context) *Tray {
	tray, _ := ctx.Value(trayKey{}).(*Tray)
	return tray
}

func push(ctx context.Context, level Level, format string, args ...any) {
	if tray := FromContext(ctx); tray != nil {
		tray.Add(level, fmt.Sprintf(format, args...))
	}
}

func Error(ctx context.Context, format string, args ...any) {
	push(ctx, LevelError, format, args...)
}

func Success(ctx context.Context, format string, args ...any) {
	push(ctx, LevelSuccess, format, args...)
}

func Info(ctx context.Context, format string, args ...any) {
	push(ctx, LevelInfo, format, args...)
}
