package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/ticketon/ticketon/internal/token"
)

// NewRouter wires the public API surface. Auth endpoints are open; everything
// else runs behind the fail-open bearer filter with role checks in handlers.
func NewRouter(log *zap.Logger, codec *token.Codec, keys token.Keys, authH *AuthHandler, transitH *TransitHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(RequestLogger(log))
	r.Use(BearerAuth(codec, keys))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)

		r.Route("/carriers", func(r chi.Router) {
			r.Post("/", transitH.CreateCarrier)
			r.Get("/{id}", transitH.GetCarrier)
			r.Put("/{id}", transitH.UpdateCarrier)
			r.Delete("/{id}", transitH.DeleteCarrier)
		})

		r.Route("/routes", func(r chi.Router) {
			r.Post("/", transitH.CreateRoute)
			r.Get("/{id}", transitH.GetRoute)
			r.Put("/{id}", transitH.UpdateRoute)
			r.Delete("/{id}", transitH.DeleteRoute)
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Post("/", transitH.CreateTicket)
			r.Get("/", transitH.SearchTickets)
			r.Get("/purchased", transitH.PurchasedTickets)
			r.Put("/{id}", transitH.UpdateTicket)
			r.Delete("/{id}", transitH.DeleteTicket)
			r.Post("/{id}/buy", transitH.BuyTicket)
		})
	})

	return otelhttp.NewHandler(r, "httpapi")
}
