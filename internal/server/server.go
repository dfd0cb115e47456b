// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"trendwatch/internal/config"
	"trendwatch/internal/domain/trends"
	"trendwatch/internal/server/handlers"
)

// SnapshotStore combines the snapshot capabilities the handlers need
type SnapshotStore interface {
	handlers.SnapshotSaver
	handlers.SnapshotHistory
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	natsConn *nats.Conn,
	fetcher trends.Fetcher,
	analyzer handlers.Analyzer,
	files handlers.FileExporter,
	tables handlers.TableExporter,
	snapshots SnapshotStore,
	captures handlers.CaptureHistory,
	eventsTopic string,
	log *logrus.Logger,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	trendsHandler := handlers.NewTrendsHandler(fetcher, analyzer, snapshots, natsConn, eventsTopic, log)
	analysisHandler := handlers.NewAnalysisHandler(fetcher, analyzer, snapshots, natsConn, eventsTopic, log)
	exportHandler := handlers.NewExportHandler(fetcher, files, tables, log)
	historyHandler := handlers.NewHistoryHandler(snapshots, captures, log)
	metaHandler := handlers.NewMetaHandler()

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Trends API
			r.Route("/trends", func(r chi.Router) {
				r.Get("/search", trendsHandler.Search)
				r.Get("/related-queries", trendsHandler.RelatedQueries)
				r.Get("/related-topics", trendsHandler.RelatedTopics)
				r.Get("/regions", trendsHandler.Regions)
				r.Get("/trending", trendsHandler.Trending)
				r.Get("/suggestions", trendsHandler.Suggestions)
			})

			// Analysis API
			r.Route("/analysis", func(r chi.Router) {
				r.Get("/compare", analysisHandler.Compare)
				r.Get("/seasonal", analysisHandler.Seasonal)
				r.Get("/comprehensive", analysisHandler.Comprehensive)
			})

			// Export API
			r.Route("/export", func(r chi.Router) {
				r.Post("/csv", exportHandler.CSV)
				r.Post("/json", exportHandler.JSON)
				r.Post("/sqlite", exportHandler.SQLite)
			})

			// History API
			r.Route("/history", func(r chi.Router) {
				r.Get("/keywords/{keyword}", historyHandler.KeywordHistory)
				r.Get("/trending", historyHandler.TrendingHistory)
			})

			// Meta API
			r.Route("/meta", func(r chi.Router) {
				r.Get("/timeframes", metaHandler.Timeframes)
				r.Get("/regions", metaHandler.Regions)
			})
		})
	})

	// WebSocket endpoint for real-time trending events
	router.Get("/ws/trending", handlers.TrendingWebSocketHandler(natsConn, captures, eventsTopic, log))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
