package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus/docs" //this is required to generate swagger docs
	"campus/internal/auth"
	"campus/internal/mailer"
	"campus/internal/notifications"
	"campus/internal/ratelimiter"
	"campus/internal/scoring"
	"campus/internal/store"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	push          notifications.PushSender
	contentPolicy scoring.ContentPolicy
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	mail        mailConfig
	frontendURL string
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}
type tokenConfig struct {
	refreshSecret   string
	secret          string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}
type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	exp       time.Duration
	fromEmail string
	mailtrap  mailTrapConfig
}

type mailTrapConfig struct {
	apiKey string
}

type dbConfig struct {
	addr        string
	maxConns    int
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public routes
		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})
		r.Put("/users/activate/{token}", app.activateUserHandler)

		r.Route("/colleges", func(r chi.Router) {
			r.Get("/", app.listCollegesHandler)
			r.Get("/{collegeID}", app.getCollegeHandler)
			r.Get("/{collegeID}/reviews", app.getCollegeReviewsHandler)

			// Authenticated student routes
			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Post("/{collegeID}/reviews", app.createReviewHandler)
				r.Post("/{collegeID}/applications", app.createApplicationHandler)
				r.Put("/{collegeID}/save", app.saveCollegeHandler)
				r.Delete("/{collegeID}/save", app.unsaveCollegeHandler)
			})

			// Admin-only college management
			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Use(app.RequireAdmin)
				r.Post("/", app.createCollegeHandler)
				r.Patch("/{collegeID}", app.updateCollegeHandler)
				r.Delete("/{collegeID}", app.deleteCollegeHandler)
				r.Post("/{collegeID}/photos", app.uploadCollegePhotoHandler)
				r.Delete("/{collegeID}/photos", app.deleteCollegePhotoHandler) // DELETE /colleges/{collegeID}/photos?photo_url={url}
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Patch("/{reviewID}", app.updateReviewHandler)
			r.Delete("/{reviewID}", app.deleteReviewHandler)
			r.Put("/{reviewID}/helpful", app.markReviewHelpfulHandler)
			r.Delete("/{reviewID}/helpful", app.unmarkReviewHelpfulHandler)
			r.Put("/{reviewID}/report", app.reportReviewHandler)
		})

		r.Route("/applications", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/", app.listMyApplicationsHandler)
			r.Get("/{applicationID}", app.getApplicationHandler)
			r.Put("/{applicationID}/withdraw", app.withdrawApplicationHandler)
			r.Post("/{applicationID}/documents", app.uploadApplicationDocumentHandler)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/me", app.getCurrentUserHandler)
			r.Put("/", app.updateUserHandler)
			r.Post("/profile-picture", app.uploadProfilePictureHandler)
			r.Put("/profile-picture", app.updateProfilePictureHandler)
			r.Get("/saved-colleges", app.getSavedCollegesHandler)
			r.Post("/logout", app.logoutHandler)
			r.Post("/push-tokens", app.savePushTokenHandler)
			r.Delete("/push-tokens", app.removePushTokenHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Use(app.RequireAdmin)
			r.Get("/overview", app.adminOverviewHandler)
			r.Get("/reviews/reported", app.adminListReportedReviewsHandler)
			r.Put("/reviews/{reviewID}/restore", app.adminRestoreReviewHandler)
			r.Delete("/reviews/{reviewID}", app.adminRemoveReviewHandler)
			r.Get("/colleges/{collegeID}/applications", app.adminListApplicationsHandler)
			r.Patch("/applications/{applicationID}/status", app.adminUpdateApplicationStatusHandler)
			r.Post("/push-tokens/bulk-remove", app.bulkRemoveTokensHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
