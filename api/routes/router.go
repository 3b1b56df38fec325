package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daleelcare/daleelcare-backend/api/controllers"
	"github.com/daleelcare/daleelcare-backend/api/middleware"
	"github.com/daleelcare/daleelcare-backend/internal/bookings"
	"github.com/daleelcare/daleelcare-backend/internal/outbox"
	"github.com/daleelcare/daleelcare-backend/internal/providers"
	"github.com/daleelcare/daleelcare-backend/internal/wallet"
	"github.com/daleelcare/daleelcare-backend/pkg/config"
	"github.com/daleelcare/daleelcare-backend/pkg/db"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
	"github.com/daleelcare/daleelcare-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	bookingService bookings.Service,
	providerService providers.Service,
	walletService wallet.Service,
	outboxDispatcher outbox.Dispatcher,
	outboxRepo outbox.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	policy := cfg.Policy.Platform()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.Live())
		r.Get("/ready", controllers.Ready(dbP, redisClient, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", controllers.BookingCreate(bookingService, logg))
			r.Get("/", controllers.BookingList(bookingService, logg))
			r.Get("/{bookingID}", controllers.BookingGet(bookingService, logg))
			r.Get("/{bookingID}/history", controllers.BookingHistoryList(bookingService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(logg))
				r.Post("/assigned", controllers.BookingCreateAssigned(bookingService, logg, policy))
				r.Post("/{bookingID}/confirm-deal", controllers.BookingConfirmDeal(bookingService, logg))
				r.Put("/{bookingID}/pricing", controllers.BookingSavePricing(bookingService, logg))
				r.Get("/{bookingID}/candidates", controllers.BookingCandidates(bookingService, logg))
				r.Put("/{bookingID}/provider-share", controllers.BookingSaveProviderShare(bookingService, logg))
				r.Post("/{bookingID}/assign", controllers.BookingAssign(bookingService, logg, policy))
				r.Post("/{bookingID}/reject", controllers.BookingReject(bookingService, logg))
			})

			r.Post("/{bookingID}/accept", controllers.BookingAccept(bookingService, logg))
			r.Post("/{bookingID}/check-in", controllers.BookingCheckIn(bookingService, logg))
			r.Post("/{bookingID}/complete", controllers.BookingComplete(bookingService, logg))
			r.Post("/{bookingID}/cancel", controllers.BookingCancel(bookingService, logg))
		})

		r.Route("/providers", func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))
			r.Get("/", controllers.ProviderListAssignable(providerService, logg))
			r.Get("/{providerID}", controllers.ProviderGet(providerService, logg))
		})

		r.Route("/wallets", func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))
			r.Get("/{providerID}/balance", controllers.WalletBalance(walletService, logg))
			r.Get("/{providerID}/statement", controllers.WalletStatement(walletService, logg))
			r.Post("/{providerID}/settlements", controllers.WalletRecordSettlement(walletService, logg))
		})

		r.Route("/outbox", func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))
			r.Post("/dispatch", controllers.OutboxDispatch(outboxDispatcher, logg))
			r.Get("/failed", controllers.OutboxListFailed(outboxRepo, logg))
		})
	})

	return r
}
