package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/compta/internal/http/account"
	"github.com/MrJamesThe3rd/compta/internal/http/importcsv"
	"github.com/MrJamesThe3rd/compta/internal/http/piece"
)

func New(
	allowedOrigins []string,
	pieceV1 *piece.Handler,
	accountsV1 *account.Handler,
	importV1 *importcsv.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/piece", pieceV1.Routes)

		r.Route("/accounts", accountsV1.Routes)

		r.Route("/import", importV1.Routes)
	})

	return router
}
