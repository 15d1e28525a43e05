package handlers_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"pharmabot/internal/bot"
	"pharmabot/internal/http/handlers"
	"pharmabot/internal/repos"
	"pharmabot/internal/services"
	"pharmabot/internal/telegram"
)

type captureAPI struct {
	sent []string
}

func (c *captureAPI) Send(_ context.Context, _ int64, text, _ string) error {
	c.sent = append(c.sent, text)
	return nil
}

func (c *captureAPI) SendKeyboard(_ context.Context, _ int64, text string, _ *telegram.ReplyKeyboardMarkup) error {
	c.sent = append(c.sent, text)
	return nil
}

func (c *captureAPI) BanChatMember(context.Context, int64, int64, time.Time) error { return nil }

func (c *captureAPI) UnbanChatMember(context.Context, int64, int64) error { return nil }

func (c *captureAPI) RestrictChatMember(context.Context, int64, int64, time.Time) error {
	return nil
}

func webhookApp(t *testing.T) (*fiber.App, *captureAPI) {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	schema := `
	CREATE TABLE medicines(
	  id INTEGER PRIMARY KEY, name TEXT NOT NULL,
	  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0), expiry_date TEXT NOT NULL
	);
	CREATE TABLE orders(
	  id TEXT PRIMARY KEY, user_id TEXT NOT NULL, medicine_id INTEGER NOT NULL,
	  quantity INTEGER NOT NULL, status TEXT NOT NULL, created_at TEXT
	);
	INSERT INTO medicines(id,name,stock,expiry_date) VALUES (1,'Aspirin',10,'2025-06-30');
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}

	medRepo := repos.NewMedicineRepo(db)
	api := &captureAPI{}
	router := bot.NewRouter(api,
		services.NewOrderService(medRepo, repos.NewOrderRepo(db)),
		services.NewInventoryService(medRepo),
		"pharma_bot")

	app := fiber.New()
	app.Use(requestid.New())
	h := &handlers.WebhookHandler{Router: router}
	app.Post("/telegram/webhook", h.Receive)
	return app, api
}

func TestWebhookDispatchesUpdate(t *testing.T) {
	app, api := webhookApp(t)

	body := `{"update_id":1,"message":{"message_id":5,"chat":{"id":42,"type":"private"},"from":{"id":7,"first_name":"Tester"},"text":"/inventory"}}`
	req := httptest.NewRequest("POST", "/telegram/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(api.sent) != 1 || !strings.Contains(api.sent[0], "Aspirin") {
		t.Fatalf("update not dispatched: %v", api.sent)
	}
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	app, api := webhookApp(t)

	req := httptest.NewRequest("POST", "/telegram/webhook", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if len(api.sent) != 0 {
		t.Fatalf("malformed update reached the router: %v", api.sent)
	}
}

func TestWebhookIgnoresMessagelessUpdate(t *testing.T) {
	app, api := webhookApp(t)

	req := httptest.NewRequest("POST", "/telegram/webhook", strings.NewReader(`{"update_id":2}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(api.sent) != 0 {
		t.Fatalf("unexpected sends: %v", api.sent)
	}
}
