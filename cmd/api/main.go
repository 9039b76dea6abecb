package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/atelierdesk/api/internal/handlers"
	"github.com/atelierdesk/api/internal/platform/config"
	"github.com/atelierdesk/api/internal/platform/observability"
	"github.com/atelierdesk/api/internal/repositories/memory"
	"github.com/atelierdesk/api/internal/services"
)

const serviceName = "atelierdesk-pricing"

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		os.Stderr.WriteString("failed to initialise logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	router, err := buildRouter(cfg, logger)
	if err != nil {
		logger.Fatal("failed to wire application", zap.Error(err))
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			_ = server.Close()
		}
	}

	logger.Info("server stopped")
}

func buildRouter(cfg config.Config, logger *zap.Logger) (http.Handler, error) {
	events := observability.EventLogger(logger)

	catalog := memory.NewCatalogStore(memory.SeedCatalog())
	modifiers := memory.NewModifierStore(memory.SeedModifiers())
	policy := services.NewStaticDiscountPolicy(services.StaticDiscountPolicyDeps{})

	validator, err := services.NewQuoteValidator(services.QuoteValidatorDeps{
		Policy:           policy,
		MaxItems:         cfg.Pricing.MaxItems,
		MaxQuantity:      cfg.Pricing.MaxQuantity,
		MaxModifierCodes: cfg.Pricing.MaxModifierCodes,
		MaxCodeLength:    cfg.Pricing.MaxCodeLength,
		Logger:           events,
	})
	if err != nil {
		return nil, err
	}

	dispatcher := services.NewModifierDispatcher(services.ModifierDispatcherDeps{
		PriceFloor:        cfg.Pricing.PriceFloor,
		RangeWeightFactor: cfg.Pricing.RangeWeightFactor,
	})

	formulas, err := services.NewFormulaEvaluator(services.FormulaEvaluatorDeps{
		CacheSize: cfg.Pricing.FormulaCacheSize,
		Timeout:   cfg.Pricing.FormulaTimeout,
		Logger:    events,
	})
	if err != nil {
		return nil, err
	}

	calculator, err := services.NewSequentialCalculator(services.SequentialCalculatorDeps{
		Dispatcher: dispatcher,
		Formulas:   formulas,
		PriceFloor: cfg.Pricing.PriceFloor,
		Logger:     events,
	})
	if err != nil {
		return nil, err
	}

	aggregator, err := services.NewOrderAggregator(services.OrderAggregatorDeps{
		Policy:     policy,
		PriceFloor: cfg.Pricing.PriceFloor,
		Logger:     events,
	})
	if err != nil {
		return nil, err
	}

	quotes, err := services.NewQuoteService(services.QuoteServiceDeps{
		Catalog:    catalog,
		Modifiers:  modifiers,
		Policy:     policy,
		Validator:  validator,
		Calculator: calculator,
		Aggregator: aggregator,
		Logger:     events,
	})
	if err != nil {
		return nil, err
	}

	pricing, err := handlers.NewPricingHandlers(quotes)
	if err != nil {
		return nil, err
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger),
			observability.TraceMiddleware(serviceName),
			observability.RecoveryMiddleware(logger),
			observability.RequestLoggerMiddleware(),
		),
		handlers.WithPricingRoutes(pricing.Routes),
	)
	return router, nil
}
