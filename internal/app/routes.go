package app

import (
	"context"
	"net/http"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"habitTrackerAPI/handlers"
	"habitTrackerAPI/middleware"

	_ "net/http/pprof"
)

func (a *Application) routes() http.Handler {
	habitHandler := handlers.NewHabitHandler(a.habitService)
	journalHandler := handlers.NewJournalHandler(a.journalService)
	userHandler := handlers.NewUserHandler(a.userService)
	notificationHandler := handlers.NewNotificationHandler(a.notificationService)
	liveHandler := handlers.NewLiveHandler(a.hub, a.auth)

	r := mux.NewRouter()

	// Authenticates itself from ?token= and hijacks the connection.
	r.HandleFunc("/api/v1/live", liveHandler.Connect).Methods("GET")

	standardRouter := r.PathPrefix("/").Subrouter()
	standardRouter.Use(a.rateLimiter.Middleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(a.config.Metrics.User, a.config.Metrics.Pass)(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(a.config.Metrics.PprofSecret)(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", a.health).Methods("GET")

	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	protected := api.PathPrefix("").Subrouter()
	protected.Use(a.auth.Middleware)

	protected.HandleFunc("/habits/today", habitHandler.GetToday).Methods("GET")
	protected.HandleFunc("/habits/stats", habitHandler.GetStats).Methods("GET")
	protected.HandleFunc("/habits", habitHandler.ListHabits).Methods("GET")
	protected.HandleFunc("/habits", habitHandler.CreateHabit).Methods("POST")
	protected.HandleFunc("/habits/{id}/completion", habitHandler.ToggleCompletion).Methods("PUT")
	protected.HandleFunc("/habits/{id}/calendar", habitHandler.GetHabitCalendar).Methods("GET")

	protected.HandleFunc("/journals", journalHandler.ListJournals).Methods("GET")
	protected.HandleFunc("/journals/calendar", journalHandler.GetJournalCalendar).Methods("GET")
	protected.HandleFunc("/journals/{date}", journalHandler.GetJournal).Methods("GET")
	protected.HandleFunc("/journals/{date}", journalHandler.SaveJournal).Methods("PUT")

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/avatars", userHandler.GetAvatars).Methods("GET")
	protected.HandleFunc("/user/stats", habitHandler.GetUserStats).Methods("GET")
	protected.HandleFunc("/user/photo", userHandler.UpdatePhoto).Methods("PUT")
	protected.HandleFunc("/user/logout", userHandler.Logout).Methods("POST")

	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(a.config.Server.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	return corsHandler(r)
}

func (a *Application) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := a.store.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status": "unhealthy", "error": "store connection failed"}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy", "service": "habit-tracker-api"}`))
}
