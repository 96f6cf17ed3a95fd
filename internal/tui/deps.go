package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/clive/todo-tui/internal/api"
	"github.com/clive/todo-tui/internal/auth"
)

// requestTimeout bounds each command that talks to the API or the store
const requestTimeout = 15 * time.Second

// Deps are the collaborators shared by every screen
type Deps struct {
	Client        *api.Client
	Session       *auth.Manager
	Router        *Router
	Logger        *slog.Logger
	GuardInterval time.Duration
	Debug         bool
	Now           func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
