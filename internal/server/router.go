package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/taskflow/vacation/auth"
	"github.com/taskflow/vacation/httpx"
	"github.com/taskflow/vacation/internal/handlers"
	"github.com/taskflow/vacation/internal/models"
	"github.com/taskflow/vacation/internal/services"

	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth rejects tokens whose user no longer exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	ah := handlers.NewAuthHandler(db)
	mux.HandleFunc("POST /auth/login", ah.Login)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}

	uh := handlers.NewUserHandler(db, services.NewUserService(db))
	mux.Handle("GET /users", protected(uh.List))
	mux.Handle("POST /users", protected(uh.Create))
	mux.Handle("PUT /users/{id}", protected(uh.Update))
	mux.Handle("DELETE /users/{id}", protected(uh.Delete))

	vh := handlers.NewVacationHandler(db, services.NewVacationService(db))
	mux.Handle("GET /vacations", protected(vh.List))
	mux.Handle("POST /vacations", protected(vh.Create))
	mux.Handle("PUT /vacations/{id}/approve", protected(vh.Approve))
	mux.Handle("PUT /vacations/{id}/reject", protected(vh.Reject))
	mux.Handle("DELETE /vacations/{id}", protected(vh.Delete))

	return withRecover(withLogging(mux))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
