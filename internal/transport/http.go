package transport

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lunetoptics/lunet-backend/internal/checkout"
	"github.com/lunetoptics/lunet-backend/internal/config"
	"github.com/lunetoptics/lunet-backend/internal/discount"
	"github.com/lunetoptics/lunet-backend/internal/handler"
	"github.com/lunetoptics/lunet-backend/internal/invoice"
	"github.com/lunetoptics/lunet-backend/internal/notification"
	"github.com/lunetoptics/lunet-backend/internal/order"
	"github.com/lunetoptics/lunet-backend/internal/product"
	"github.com/lunetoptics/lunet-backend/internal/shipping"
)

func NewRouter(db *pgxpool.Pool, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	productRepo := product.NewRepository(db)
	discountRepo := discount.NewRepository(db)
	orderRepo := order.NewRepository(db)

	productSvc := product.NewService(productRepo)
	discountSvc := discount.NewService(discountRepo)
	notifier := notification.NewEmailSender(cfg.SMTP)
	orderSvc := order.NewService(orderRepo, discountSvc, notifier)

	stripeClient := checkout.NewStripeClient(cfg.Stripe)
	checkoutSvc := checkout.NewService(stripeClient, orderRepo, discountSvc, notifier)

	invoiceSvc := invoice.NewService(invoice.NewOblioClient(cfg.Oblio), orderRepo)
	shippingSvc := shipping.NewService(shipping.NewCourierClient(cfg.Courier), orderRepo)

	productHandler := handler.NewProductHandler(productSvc)
	discountHandler := handler.NewDiscountHandler(discountSvc)
	checkoutHandler := handler.NewCheckoutHandler(orderSvc, checkoutSvc)
	webhookHandler := handler.NewWebhookHandler(checkoutSvc)
	adminHandler := handler.NewAdminHandler(productSvc, orderSvc, orderRepo, discountSvc, invoiceSvc, shippingSvc)

	r.Get("/products", productHandler.ListProducts)
	r.Get("/products/{id}", productHandler.GetProduct)
	r.Post("/validate-discount", discountHandler.ValidateDiscount)
	r.Post("/calculate-shipping", checkoutHandler.CalculateShipping)
	r.Post("/create-order-ramburs", checkoutHandler.CreateOrderRamburs)
	r.Post("/create-checkout-session", checkoutHandler.CreateCheckoutSession)
	r.Post("/webhook", webhookHandler.HandleWebhook)

	r.Route("/admin", func(r chi.Router) {
		r.Use(AdminAuth(cfg.Admin.Secret))
		r.HandleFunc("/", adminHandler.HandleResource)
		r.HandleFunc("/discount-codes", adminHandler.HandleDiscountCodes)
		r.Post("/send-invoices", adminHandler.SendInvoices)
		r.Post("/generate-awb", adminHandler.GenerateAWBs)
		r.Post("/export-orders", adminHandler.ExportOrders)
	})

	return r
}

// AdminAuth rejects requests whose x-admin-secret header does not match
// the configured secret. It runs before any request body is read.
func AdminAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("x-admin-secret")
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
