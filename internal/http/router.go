package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"spendbook/internal/http/account"
	"spendbook/internal/http/expense"
	"spendbook/internal/http/export"
	"spendbook/internal/http/importcsv"
	"spendbook/internal/http/suggest"
	"spendbook/internal/http/summary"
)

// Options carries router-level settings. An empty AuthSecret disables
// authentication.
type Options struct {
	AuthSecret  string
	CORSOrigins []string
}

func New(
	accountsV1 *account.Handler,
	expensesV1 *expense.Handler,
	summaryV1 *summary.Handler,
	importV1 *importcsv.Handler,
	suggestV1 *suggest.Handler,
	exportV1 *export.Handler,
	opts Options,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	if opts.AuthSecret != "" {
		router.Use(RequireToken(opts.AuthSecret))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			accountsV1.Routes(r)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			expensesV1.Routes(r)
		})

		r.Route("/summary", summaryV1.Routes)

		r.Route("/import", importV1.Routes)

		r.Route("/suggest", func(r chi.Router) {
			suggestV1.Routes(r)
		})

		r.Route("/export", exportV1.Routes)
	})

	return router
}
