package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/vinayak-store/internal/middleware"
	"github.com/mmeshcher/vinayak-store/internal/model"
)

// SetupRouter настраивает HTTP-маршруты и middleware магазина.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(h.authMiddleware.Identify)

		r.Route("/user", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)

			r.With(h.authMiddleware.RequireUser).Get("/orders", h.GetOrders)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", h.ListProducts)
			r.Get("/products/{id}", h.GetProduct)
			r.Get("/services", h.ListServices)
			r.Get("/services/{id}", h.GetService)
			r.Post("/services/{id}/quote", h.Quote(model.KindService))
			r.Get("/packages", h.ListPackages)
			r.Get("/packages/{id}", h.GetPackage)
			r.Post("/packages/{id}/quote", h.Quote(model.KindPackage))
		})

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.DeviceSession)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)
				r.Post("/products", h.AddProduct)
				r.Post("/packages", h.AddPackage)
				r.Post("/services", h.AddService)
				r.Patch("/lines/{lineID}", h.UpdateLine)
				r.Delete("/lines/{lineID}", h.RemoveLine)
			})

			r.Post("/checkout", h.Checkout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.authMiddleware.RequireAdmin)

			r.Get("/orders", h.AdminOrders)
			r.Get("/service-requests", h.ServiceRequests)
			r.Patch("/orders/{id}/status", h.UpdateOrderStatus)
			r.Get("/orders/{id}/whatsapp", h.StatusMessageLink)
			r.Post("/assets", h.UploadAsset)
			r.Post("/catalog/refresh", h.RefreshCatalog)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
