package delivery

import (
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

type RouteOptions struct {
	APIToken string
	// RequestsPerMinute limits /process_pdf per client IP; zero disables.
	RequestsPerMinute int
}

// RegisterRoutes mounts the service endpoints. hRec may be nil when the
// request log is disabled.
func RegisterRoutes(
	r chi.Router,
	hPDF *PDFHandler,
	hHealth *HealthHandler,
	hRec *RecordHandler,
	opts RouteOptions,
) {
	// --- public ---
	r.With(httputil.RecoverMiddleware).Get("/health", hHealth.Health)
	r.With(httputil.RecoverMiddleware).Get("/ping", hHealth.Ping)

	// --- protected ---
	r.Group(func(pr chi.Router) {
		pr.Use(
			httputil.RecoverMiddleware,
			AuthMiddleware(opts.APIToken),
		)

		pr.Group(func(lr chi.Router) {
			if opts.RequestsPerMinute > 0 {
				lr.Use(httprate.LimitByIP(opts.RequestsPerMinute, time.Minute))
			}
			lr.Post("/process_pdf", hPDF.ProcessPDF)
		})

		if hRec != nil {
			pr.Get("/records", hRec.List)
		}
	})
}
