package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joestump/affilinks/internal/auth"
	"github.com/joestump/affilinks/internal/cache"
	"github.com/joestump/affilinks/internal/config"
	"github.com/joestump/affilinks/internal/db"
	"github.com/joestump/affilinks/internal/handler"
	"github.com/joestump/affilinks/internal/links"
	"github.com/joestump/affilinks/internal/llm"
	"github.com/joestump/affilinks/internal/logger"
	"github.com/joestump/affilinks/internal/metrics"
	"github.com/joestump/affilinks/internal/store"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			initLogger(cfg)
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Without a database the server still runs: the link list serves
			// the built-in links and every write reports storage unavailable.
			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			switch {
			case errors.Is(err, db.ErrNotConfigured):
				logger.Warnw("no database configured, serving built-in links only")
			case err != nil:
				return err
			default:
				defer func() { _ = database.Close() }()
				if err := db.Migrate(database, cfg.DB.Driver); err != nil {
					return err
				}
			}

			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies)
			admins := auth.NewAdminSet(cfg.AdminEmails...)
			if len(admins) == 0 {
				logger.Warnw("no admin emails configured, links cannot be edited or deleted")
			}

			userStore := store.NewUserStore(database)
			linkStore := store.NewLinkStore(database)
			tokenStore := auth.NewSQLTokenStore(database)

			listCache, closeCache := newListCache(ctx, cfg)
			defer closeCache()
			repo := links.New(linkStore, links.WithCache(listCache), links.WithLogger(logger.Z()))

			describer, err := llm.New(cfg)
			if err != nil {
				return err
			}
			if describer == nil {
				logger.Infow("AI descriptions disabled, no llm provider configured")
			}

			var ssoHandlers *auth.SSOHandlers
			oidcProvider, err := auth.NewOIDCProvider(ctx, cfg)
			if err != nil {
				return err
			}
			if oidcProvider != nil {
				ssoHandlers = auth.NewSSOHandlers(oidcProvider, sessionManager, userStore, !cfg.InsecureCookies)
			}

			router := handler.NewRouter(handler.Deps{
				SessionManager: sessionManager,
				AuthMiddleware: auth.NewMiddleware(auth.NewLocalProvider(sessionManager, userStore), admins),
				SSOHandlers:    ssoHandlers,
				BearerAuth:     auth.NewBearerTokenMiddleware(tokenStore, userStore, admins),
				Links:          repo,
				TokenStore:     tokenStore,
				Describer:      describer,
			})

			if database != nil {
				go reportLinkCount(ctx, linkStore)
			}

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Infow("listening", "addr", cfg.HTTP.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.Infow("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

// newListCache picks Redis when configured and reachable, otherwise an
// in-process cache.
func newListCache(ctx context.Context, cfg *config.Config) (links.ListCache, func()) {
	if cfg.Redis.Addr == "" {
		return cache.NewMemory(cfg.Redis.TTL), func() {}
	}
	rc := cache.NewRedis(cache.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
		TTL:      cfg.Redis.TTL,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		logger.Warnw("redis unreachable, using in-process list cache", "addr", cfg.Redis.Addr, "error", err)
		_ = rc.Close()
		return cache.NewMemory(cfg.Redis.TTL), func() {}
	}
	logger.Infow("list cache backed by redis", "addr", cfg.Redis.Addr)
	return rc, func() { _ = rc.Close() }
}

// reportLinkCount refreshes the links gauge once a minute.
func reportLinkCount(ctx context.Context, ls *store.LinkStore) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		if n, err := ls.Count(ctx); err == nil {
			metrics.LinksTotal.Set(float64(n))
		} else if ctx.Err() == nil {
			logger.Debugw("count links", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
