package server

import (
	"fmt"
	"net/http"
	"time"

	httpLogger "github.com/chi-middleware/logrus-logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/mentormatch/mentormatch/pkg/models"
)

const ReadHeaderTimeout = 5 * time.Second

// Create creates a new HTTP server with the given app state
func Create(appState *models.AppState) *http.Server {
	router := setupRouter(appState)
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", appState.Config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
}

func setupRouter(appState *models.AppState) *chi.Mux {
	router := chi.NewRouter()
	router.Use(httpLogger.Logger("router", log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(SendVersion)
	router.Use(middleware.Heartbeat("/healthz"))
	router.Use(otelchi.Middleware(
		"router",
		otelchi.WithChiRoutes(router),
		otelchi.WithRequestMethodInSpanName(true),
	))

	router.Route("/api/v1", func(r chi.Router) {
		// Student-related routes
		r.Route("/students", func(r chi.Router) {
			r.Get("/", ListStudentsHandler(appState))
			r.Post("/", CreateStudentHandler(appState))
			r.Route("/{studentId}", func(r chi.Router) {
				r.Get("/", GetStudentHandler(appState))
				r.Patch("/", UpdateStudentHandler(appState))
				// Recommendation generation and retrieval
				r.Get("/recommendations", GetRecommendationsHandler(appState))
			})
		})
		// Mentor-related routes
		r.Route("/mentors", func(r chi.Router) {
			r.Get("/", ListMentorsHandler(appState))
			r.Post("/", CreateMentorHandler(appState))
			r.Route("/{mentorId}", func(r chi.Router) {
				r.Get("/", GetMentorHandler(appState))
				r.Patch("/", UpdateMentorHandler(appState))
			})
		})
	})

	return router
}
