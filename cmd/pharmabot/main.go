package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"pharmabot/internal/bot"
	"pharmabot/internal/config"
	"pharmabot/internal/http/handlers"
	applog "pharmabot/internal/log"
	"pharmabot/internal/repos"
	"pharmabot/internal/services"
	"pharmabot/internal/telegram"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Core wiring
	medRepo := repos.NewMedicineRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	orderSvc := services.NewOrderService(medRepo, orderRepo)
	invSvc := services.NewInventoryService(medRepo)

	tg := telegram.NewClient(cfg.BotToken, "")
	notifier := services.NewNotifier(tg, cfg.PharmacyChatID, cfg.NotifyWorkers, cfg.SendTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Fatalf("telegram getMe: %v", err)
	}
	router := bot.NewRouter(tg, orderSvc, invSvc, me.Username)

	// Recurring expiry scan
	sched := services.NewScheduler()
	if err := sched.Start(cfg.ScanSpec, func() error {
		_, err := services.RunExpiryCheck(ctx, invSvc, notifier, cfg.HorizonDays)
		return err
	}); err != nil {
		log.Fatal(err)
	}

	// HTTP surface: health plus webhook ingestion
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.RequestError(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		},
	})
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	webhookH := &handlers.WebhookHandler{Router: router}
	app.Post("/telegram/webhook", webhookH.Receive)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			applog.Error("http.listen", err, nil)
		}
	}()

	// Update delivery: webhook when configured, long polling otherwise.
	if cfg.WebhookURL != "" {
		if err := tg.SetWebhook(ctx, cfg.WebhookURL); err != nil {
			log.Fatalf("set webhook: %v", err)
		}
		applog.Info("bot.webhook", map[string]any{"url": cfg.WebhookURL})
	} else {
		applog.Info("bot.polling", nil)
		go bot.Poll(ctx, tg, router)
	}

	<-ctx.Done()
	log.Println("shutting down gracefully")

	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sched.Stop(shCtx)
	_ = app.ShutdownWithContext(shCtx)
	_ = db.Close()
}
