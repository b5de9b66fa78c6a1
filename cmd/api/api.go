package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"rolesapi/docs"
	"rolesapi/internal/domain/roles"
	"rolesapi/internal/domain/storage"
	"rolesapi/internal/domain/users"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// dataStore is the part of *storage.Container the handlers use.
type dataStore interface {
	Roles() roles.Store
	Users() users.Store
	WithTx(ctx context.Context, fn func(tx *storage.Tx) error) error
	Ping(ctx context.Context) error
}

type application struct {
	config config
	store  dataStore
	logger *zap.SugaredLogger
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// Signals ctx.Done() on the request context once the timeout elapses.
	if app.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(app.config.RequestTimeout))
	}

	r.Get("/health", app.healthCheckHandler)
	r.Get("/debug/vars", expvar.Handler().ServeHTTP)
	if app.config.Env == "development" {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/roles", func(r chi.Router) {
			r.Get("/", app.listRolesHandler)
			r.Post("/", app.createRoleHandler)

			r.Route("/{roleID}", func(r chi.Router) {
				r.Get("/", app.getRoleHandler)
				r.Put("/", app.updateRoleHandler)
				r.Delete("/", app.deleteRoleHandler)
				r.Get("/users", app.listRoleUsersHandler)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", app.listUsersHandler)
			r.Post("/", app.createUserHandler)

			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", app.getUserHandler)
				r.Put("/", app.updateUserHandler)
				r.Delete("/", app.deleteUserHandler)
			})
		})
	})

	return r
}

// run serves mux until SIGINT or SIGTERM.
func (app *application) run(mux http.Handler) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.serve(ctx, mux)
}

// serve listens on the configured address and drains in-flight requests once
// ctx is done. A completed drain returns nil.
func (app *application) serve(ctx context.Context, mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.APIURL
	docs.SwaggerInfo.BasePath = "/api"

	srv := &http.Server{
		Addr:         app.config.Addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error, 1)

	go func() {
		<-ctx.Done()

		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("shutting down", "cause", context.Cause(ctx).Error())

		shutdown <- srv.Shutdown(sctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.Addr, "env", app.config.Env)

	return nil
}
