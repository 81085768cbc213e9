package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/posgate/handler"

	// Import for side-effect registration
	_ "github.com/mstgnz/posgate/provider/garanti"
	_ "github.com/mstgnz/posgate/provider/nestpay"
)

// Routes wires the API endpoints onto the router.
func Routes(r chi.Router, paymentHandler *handler.PaymentHandler, logsHandler *handler.LogsHandler) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/providers", paymentHandler.ListProviders)
		r.Post("/payments/{provider}", paymentHandler.Initiate3DPayment)
		r.Post("/verify/{provider}", paymentHandler.VerifyCallback)

		r.Route("/logs/{provider}", func(r chi.Router) {
			r.Get("/", logsHandler.ListLogs)
			r.Get("/order/{orderID}", logsHandler.GetOrderLogs)
			r.Get("/unverified", logsHandler.GetUnverifiedLogs)
			r.Get("/stats", logsHandler.GetLogStats)
		})
	})
}
