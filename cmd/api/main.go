package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/gin-gonic/gin"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/application/service"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/config"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/infrastructure/scheduler"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/infrastructure/session"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/infrastructure/sheets"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/handler"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/middleware"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/routes"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/logger"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/printer"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/utils"
	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.Init(logger.Config{
		Mode:       cfg.Logger.Mode,
		FileEnable: cfg.Logger.FileEnable,
		Filename:   cfg.Logger.Filename,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Prices go over the wire as numbers, the way the sheet stores them.
	decimal.MarshalJSONWithoutQuotes = true

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Sheet.URL == "" {
		zap.S().Warn("SHEET_API_URL is not set; every sheet call will fail")
	}

	// Spreadsheet gateway
	client := sheets.NewClient(sheets.Options{
		BaseURL: cfg.Sheet.URL,
		Timeouts: sheets.Timeouts{
			Write:  cfg.Sheet.WriteTimeout,
			Read:   cfg.Sheet.ReadTimeout,
			Lookup: cfg.Sheet.LookupTimeout,
			Log:    cfg.Sheet.LogTimeout,
		},
		CacheTTL:      cfg.Sheet.CacheTTL,
		SaleItemsSize: cfg.Sheet.SaleItemsCacheSize,
		SaleItemsTTL:  cfg.Sheet.SaleItemsCacheTTL,
	})
	productRepo := client.Products()
	saleRepo := client.Sales()
	userRepo := client.Users()
	logRepo := client.Logs()

	// Signed-in session
	if err := os.MkdirAll(filepath.Dir(cfg.Session.Path), 0o755); err != nil {
		zap.S().Fatalw("Failed to create session directory", "error", err)
	}
	sessions, err := session.Open(cfg.Session.Path)
	if err != nil {
		zap.S().Fatalw("Failed to open session store", "error", err)
	}
	defer func() { _ = sessions.Close() }()

	// Background sheet writes
	pool, err := ants.NewPool(cfg.Reception.PersistWorkers)
	if err != nil {
		zap.S().Fatalw("Failed to create worker pool", "error", err)
	}

	bus := EventBus.New()
	subscribeEvents(bus)

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Receipt printers
	primary, err := printer.NewPrinterFromConfig(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address, cfg.Printer.SpoolDir)
	if err != nil {
		zap.S().Warnw("Failed to initialize printer", "type", cfg.Printer.Type, "error", err)
		primary = printer.NewNullPrinter()
	}
	var secondary printer.Printer
	if t := cfg.Printer.FallbackType; t != "" && t != printer.TypeNone && t != cfg.Printer.Type {
		secondary, err = printer.NewPrinterFromConfig(t, cfg.Printer.USBPath, cfg.Printer.Address, cfg.Printer.SpoolDir)
		if err != nil {
			zap.S().Warnw("Failed to initialize fallback printer", "type", t, "error", err)
			secondary = nil
		}
	}
	printers := printer.NewFallbackPrinter(primary, secondary)
	defer func() { _ = printers.Close() }()

	// Initialize services
	activityService := service.NewActivityLogService(logRepo, pool)
	authService := service.NewAuthService(userRepo, sessions, jwtManager, activityService)
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(productRepo, activityService)
	salesService := service.NewSalesService(saleRepo, productRepo, activityService)
	receiptService := service.NewReceiptService(printers, service.ReceiptOptions{
		Header:       storeHeader(cfg.Store),
		Terms:        cfg.Store.Terms,
		CharWidth:    cfg.Printer.CharWidth,
		PrinterType:  cfg.Printer.Type,
		FallbackType: cfg.Printer.FallbackType,
	})
	receptionService := service.NewReceptionService(
		productRepo, saleRepo, receiptService, activityService, pool, bus,
		service.ReceptionOptions{
			OrderNumberBase:    cfg.Reception.OrderNumberBase,
			DefaultTax:         decimal.NewFromFloat(cfg.Reception.DefaultTax),
			ScanGap:            cfg.Reception.ScanGap,
			ScanIdle:           cfg.Reception.ScanIdle,
			ScanMinLength:      cfg.Reception.ScanMinLength,
			PrintTimeout:       cfg.Reception.PrintTimeout,
			RecentTransactions: cfg.Reception.RecentTransactions,
		},
	)

	// Periodic jobs
	jobs := scheduler.New(cfg.App.Location)
	if err := jobs.Add("refresh-products", cfg.Sheet.RefreshSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Sheet.ReadTimeout)
		defer cancel()
		receptionService.RefreshProducts(ctx)
	}); err != nil {
		zap.S().Fatalw("Failed to schedule product refresh", "error", err)
	}
	if err := jobs.Add("sweep-prints", cfg.Reception.PrintSweepSpec, receptionService.SweepPrints); err != nil {
		zap.S().Fatalw("Failed to schedule print sweep", "error", err)
	}
	jobs.Start()

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService, receptionService),
		Product:   handler.NewProductHandler(productService),
		Reception: handler.NewReceptionHandler(receptionService),
		User:      handler.NewUserHandler(userService, activityService),
		Sales:     handler.NewSalesHandler(salesService),
		Printer:   handler.NewPrinterHandler(receiptService),
	}

	limiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfigFrom(
		cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.Duration)*time.Second,
	))
	defer limiter.Stop()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Tokens:      authService,
		Cfg:         cfg,
		RateLimiter: limiter,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.S().Infow("Starting server", "name", cfg.App.Name, "port", port, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalw("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Reception.ShutdownGracePeriod)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zap.S().Errorw("HTTP shutdown", "error", err)
	}
	jobs.Stop(ctx)
	if err := receptionService.CloseAll(ctx); err != nil {
		zap.S().Warnw("Sales still being saved at shutdown", "error", err)
	}
	activityService.Wait()
	pool.Release()
}

// subscribeEvents logs what happens to sales after the cashier has moved on.
func subscribeEvents(bus EventBus.Bus) {
	events := zap.S().Named("events")
	_ = bus.SubscribeAsync(service.TopicSalePersistFailed, func(order string, err error) {
		events.Errorw("sale not fully saved", "order_number", order, "error", err)
	}, false)
	_ = bus.SubscribeAsync(service.TopicPrintAwaiting, func(order string) {
		events.Warnw("bill print not confirmed", "order_number", order)
	}, false)
	_ = bus.SubscribeAsync(service.TopicPrintResolved, func(order string, ok bool) {
		if !ok {
			events.Warnw("cashier reported failed print", "order_number", order)
		}
	}, false)
}

func storeHeader(s config.StoreConfig) entity.ReceiptHeader {
	h := entity.ReceiptHeader{
		StoreName: s.Name,
		Address:   s.Address,
		Phone:     s.Phone,
	}
	if s.NTN != "" {
		h.TaxIDs = append(h.TaxIDs, "NTN: "+s.NTN)
	}
	if s.STRN != "" {
		h.TaxIDs = append(h.TaxIDs, "STRN: "+s.STRN)
	}
	return h
}
