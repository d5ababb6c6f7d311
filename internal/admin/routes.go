package admin

import (
	"github.com/go-chi/chi/v5"
)

// Mount hangt de beheerroutes aan de router.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}
