package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cartfront/storefront-payments/internal/application/checkout"
	"github.com/cartfront/storefront-payments/internal/config"
	domainCart "github.com/cartfront/storefront-payments/internal/domain/cart"
	"github.com/cartfront/storefront-payments/internal/infrastructure/crystallize"
	"github.com/cartfront/storefront-payments/internal/infrastructure/id"
	"github.com/cartfront/storefront-payments/internal/infrastructure/memory"
	notificationworker "github.com/cartfront/storefront-payments/internal/infrastructure/notification/worker"
	"github.com/cartfront/storefront-payments/internal/infrastructure/observability/oteltrace"
	"github.com/cartfront/storefront-payments/internal/infrastructure/observability/prometrics"
	"github.com/cartfront/storefront-payments/internal/infrastructure/observability/telemetry"
	"github.com/cartfront/storefront-payments/internal/infrastructure/observability/zaplogger"
	"github.com/cartfront/storefront-payments/internal/infrastructure/outbox"
	"github.com/cartfront/storefront-payments/internal/infrastructure/stripegateway"
	"github.com/cartfront/storefront-payments/internal/observability"
	httppresentation "github.com/cartfront/storefront-payments/internal/presentation/http"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	baseLogger := zaplogger.New(
		observability.F("service", cfg.ServiceName),
		observability.F("env", cfg.Env),
	)
	defer func() {
		if s, ok := baseLogger.(interface{ Sync() error }); ok {
			_ = s.Sync()
		}
	}()

	reg := prometrics.New("", "")
	counters := map[string]observability.Counter{
		observability.MUsecaseRequests: reg.Counter(observability.MUsecaseRequests,
			"Total number of use case invocations.", "use_case", "outcome"),
		observability.MHTTPRequests: reg.Counter(observability.MHTTPRequests,
			"Total number of HTTP requests.", "method", "route", "status"),
		observability.MExternalRequests: reg.Counter(observability.MExternalRequests,
			"Total number of outbound calls to external peers.", "peer", "endpoint", "outcome"),
		observability.MOrdersSubmitted: reg.Counter(observability.MOrdersSubmitted,
			"Count of orders submitted to the commerce API.", "provider"),
	}
	histograms := map[string]observability.Histogram{
		observability.MUsecaseDuration: reg.Histogram(observability.MUsecaseDuration,
			"Duration of use case execution in seconds.", nil, "use_case"),
		observability.MHTTPRequestDuration: reg.Histogram(observability.MHTTPRequestDuration,
			"Duration of HTTP request handling in seconds.", nil, "method", "route", "status"),
		observability.MExternalRequestDuration: reg.Histogram(observability.MExternalRequestDuration,
			"Duration of outbound calls in seconds.", nil, "peer", "endpoint"),
	}
	tel := telemetry.New(oteltrace.New(cfg.ServiceName), baseLogger, counters, histograms)

	carts := memory.NewCartRepository()
	seedDemoCart(carts)

	bus := outbox.NewBus(baseLogger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	commerceClient := crystallize.NewClient(cfg.CrystallizeAPIURL, cfg.CrystallizeAPIToken, tel)
	gateway := stripegateway.New(cfg.StripeSecretKey, cfg.StripeEndpointSecret, baseLogger)
	checkoutService := checkout.NewService(carts, commerceClient, gateway, bus, cfg.Currency, tel)

	notificationWorker := notificationworker.New(bus, tel)
	notificationWorker.Start()

	handler := httppresentation.NewHandler(checkoutService, baseLogger, tel)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("http_server_start",
			observability.F("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error",
				observability.F("error", err.Error()),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error",
			observability.F("error", err.Error()),
		)
	} else {
		baseLogger.Info("http_server_stopped")
	}
}

// seedDemoCart stores one cart so the payment flow can be exercised end to end
// without an external cart service feeding the store.
func seedDemoCart(carts *memory.CartRepository) {
	gen := id.NewUUIDGenerator()
	demo := domainCart.NewWrapper(gen.NewID(), domainCart.Cart{
		Items: []domainCart.Item{
			{
				SKU:      "crystal-top-mug",
				Name:     "Crystal Top Mug",
				Quantity: 2,
				Price:    domainCart.Price{Gross: 25, Net: 20},
			},
		},
		Total: domainCart.Price{Gross: 50, Net: 40},
	}, nil)
	_ = carts.Save(context.Background(), demo)
}
