package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	_ "boxoffice-pipeline/docs"
	"boxoffice-pipeline/internal/api/handler"
	"boxoffice-pipeline/internal/observability"
	"boxoffice-pipeline/pkg/router"
)

// RegisterRoutes wires the dashboard API, Prometheus and Swagger UI onto r.
// metrics may be nil.
func RegisterRoutes(r *router.Router, h *handler.Handler, metrics *observability.Metrics) {
	r.POST("/api/v1/dashboards", h.CreateDashboard)
	r.GET("/api/v1/dashboards", h.ListDashboards)
	// More specific routes first
	r.GET("/api/v1/dashboards/*/logs", h.GetDashboardLogs)
	r.GET("/api/v1/dashboards/*/progress", h.GetDashboardProgress)
	r.GET("/api/v1/dashboards/*/summary", h.GetDashboardSummary)
	r.GET("/api/v1/dashboards/*/errors", h.GetDashboardErrors)
	r.GET("/api/v1/dashboards/*/records", h.GetDashboardRecords)
	r.GET("/api/v1/dashboards/*/files", h.GetDashboardFiles)
	r.POST("/api/v1/dashboards/*/rerun", h.RerunDashboard)
	// Generic dashboard route last
	r.GET("/api/v1/dashboards/*", h.GetDashboard)

	r.GET("/api/v1/download/*/*", h.DownloadFile)
	r.GET("/api/v1/movies", h.ListMovies)
	r.GET("/api/v1/variants", h.ListVariants)

	r.Handle("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler())
		r.Observe(metrics.ObserveRequest)
	}
}
