// Package app composes the chat client core. The connection's
// lifetime is owned here, by the composition root, not by any view:
// fx OnStart dials, fx OnStop tears the socket down.
package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/slvrxyzz/tvoizakaz/internal/auth"
	"github.com/slvrxyzz/tvoizakaz/internal/bus"
	"github.com/slvrxyzz/tvoizakaz/internal/chat"
	"github.com/slvrxyzz/tvoizakaz/internal/config"
	"github.com/slvrxyzz/tvoizakaz/internal/lock"
	"github.com/slvrxyzz/tvoizakaz/internal/logging"
	"github.com/slvrxyzz/tvoizakaz/internal/profile"
	"github.com/slvrxyzz/tvoizakaz/internal/rest"
	"github.com/slvrxyzz/tvoizakaz/internal/state"
	"github.com/slvrxyzz/tvoizakaz/internal/status"
	"github.com/slvrxyzz/tvoizakaz/internal/ws"
)

// Params holds the resolved profile and configuration passed to the fx
// module.
type Params struct {
	Profile string
	Config  *config.Config
	// Quiet redirects console logging to the file only, for the TUI
	// which owns the terminal.
	Quiet bool
}

// Module returns the fx module for the chat client, composing all
// providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("app",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideCredentials,
			provideStore,
			provideRouter,
			provideManager,
			provideChatClient,
			provideOrdersClient,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if p.Quiet {
		return logging.NewQuiet(profile.LogPath(p.Profile), p.Profile)
	}
	return logging.New(profile.LogPath(p.Profile), p.Profile)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.LockPath(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideCredentials(p Params) *auth.Source {
	tokenFile := p.Config.Server.TokenFile
	if tokenFile == "" {
		tokenFile = profile.TokenPath(p.Profile)
	}
	return auth.NewSource(p.Config.Server.Token, tokenFile, profile.CookiePath(p.Profile))
}

func provideStore(b *bus.Bus) *state.Store {
	return state.NewStore(b)
}

func provideRouter(store *state.Store, machine *status.Machine, b *bus.Bus, logger *zap.Logger) *state.Router {
	return state.NewRouter(store, machine, b, logger)
}

func provideManager(p Params, creds *auth.Source, machine *status.Machine, router *state.Router, logger *zap.Logger) *ws.Manager {
	return ws.NewManager(p.Config.Server, p.Config.Chat, creds, machine, router, logger)
}

func provideChatClient(p Params, manager *ws.Manager, logger *zap.Logger) *chat.Client {
	return chat.NewClient(manager, p.Config.Chat, logger)
}

func provideOrdersClient(p Params, creds *auth.Source, logger *zap.Logger) *rest.Client {
	return rest.NewClient(p.Config.Server, creds, logger)
}

func registerLifecycle(lc fx.Lifecycle, manager *ws.Manager, router *state.Router, store *state.Store, creds *auth.Source, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Views can tell own messages apart before the server ack
			// lands; the ack still overwrites this.
			if id := auth.UserIDFromToken(creds.Token()); id > 0 {
				store.SeedSelf(id)
			}
			// The router requests the chat list itself once the server
			// acknowledges the connection.
			router.BindSender(manager)
			manager.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			manager.Stop()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
