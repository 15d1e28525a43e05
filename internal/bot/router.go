package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"pharmabot/internal/domain"
	applog "pharmabot/internal/log"
	"pharmabot/internal/services"
	"pharmabot/internal/telegram"
	"pharmabot/internal/validate"
)

// API is the slice of the Telegram client the router uses.
type API interface {
	Send(ctx context.Context, chatID int64, text, parseMode string) error
	SendKeyboard(ctx context.Context, chatID int64, text string, kb *telegram.ReplyKeyboardMarkup) error
	BanChatMember(ctx context.Context, chatID, userID int64, until time.Time) error
	UnbanChatMember(ctx context.Context, chatID, userID int64) error
	RestrictChatMember(ctx context.Context, chatID, userID int64, until time.Time) error
}

// Keyboard button labels, also matched as free-text commands.
const (
	btnInventory = "📋 Check Inventory"
	btnOrder     = "🛒 Place Order"
	btnHelp      = "❓ Help"
)

// Router turns inbound updates into calls on the core services. It
// keeps one piece of conversational state: chats that have opened an
// anonymous-relay link and whose next message goes to a pharmacist.
type Router struct {
	Client      API
	Orders      *services.OrderService
	Inv         *services.InventoryService
	BotUsername string

	mu    sync.Mutex
	relay map[int64]int64 // chat id -> pharmacist chat id awaiting a message
}

func NewRouter(client API, orders *services.OrderService, inv *services.InventoryService, botUsername string) *Router {
	return &Router{
		Client:      client,
		Orders:      orders,
		Inv:         inv,
		BotUsername: botUsername,
		relay:       make(map[int64]int64),
	}
}

// HandleUpdate processes one update. Errors are logged, never
// propagated: a bad update must not take down the dispatch loop.
func (r *Router) HandleUpdate(ctx context.Context, u telegram.Update) {
	if u.Message == nil {
		return
	}
	if err := r.handleMessage(ctx, u.Message); err != nil {
		applog.Error("bot.handle", err, map[string]any{"chat_id": u.Message.Chat.ID})
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg.Text == "" {
		return nil
	}

	// A chat in relay state forwards its next text to the pharmacist.
	if target, ok := r.takeRelay(msg.Chat.ID); ok {
		return r.forwardToPharmacist(ctx, msg, target)
	}

	if strings.HasPrefix(msg.Text, "/") {
		return r.handleCommand(ctx, msg)
	}

	switch msg.Text {
	case btnInventory:
		return r.sendInventory(ctx, msg.Chat.ID)
	case btnOrder:
		return r.placeOrder(ctx, msg, nil)
	case btnHelp:
		return r.sendHelp(ctx, msg.Chat.ID)
	default:
		return r.Client.Send(ctx, msg.Chat.ID,
			"I don't understand that command. Please use the menu or type /help for available commands.", telegram.ModePlain)
	}
}

func (r *Router) handleCommand(ctx context.Context, msg *telegram.Message) error {
	fields := strings.Fields(msg.Text)
	cmd := strings.ToLower(strings.TrimSuffix(fields[0], "@"+r.BotUsername))
	args := fields[1:]

	switch cmd {
	case "/start":
		return r.start(ctx, msg, args)
	case "/inventory":
		applog.Info("bot.cmd.inventory", map[string]any{"chat_id": msg.Chat.ID})
		return r.sendInventory(ctx, msg.Chat.ID)
	case "/order":
		applog.Info("bot.cmd.order", map[string]any{"chat_id": msg.Chat.ID})
		return r.placeOrder(ctx, msg, args)
	case "/menu":
		return r.sendMenu(ctx, msg.Chat.ID)
	case "/help":
		return r.sendHelp(ctx, msg.Chat.ID)
	case "/message":
		link := fmt.Sprintf("https://t.me/%s?start=%d", r.BotUsername, msg.Chat.ID)
		return r.Client.Send(ctx, msg.Chat.ID,
			"Share this link to receive anonymous messages: "+link, telegram.ModePlain)
	case "/kick":
		return r.kick(ctx, msg)
	case "/ban":
		return r.restrict(ctx, msg, args, restrictBan)
	case "/mute":
		return r.restrict(ctx, msg, args, restrictMute)
	default:
		return r.Client.Send(ctx, msg.Chat.ID,
			"Unknown command. Type /help for available commands.", telegram.ModePlain)
	}
}

// start handles /start with an optional deep-link payload: a valid
// pharmacist chat id arms the anonymous relay for this chat.
func (r *Router) start(ctx context.Context, msg *telegram.Message, args []string) error {
	if len(args) == 0 {
		return r.Client.Send(ctx, msg.Chat.ID, "Welcome to the pharmacy bot!", telegram.ModePlain)
	}
	id, ok := validate.ChatID(args[0])
	if !ok {
		applog.Warn("bot.start.badlink", map[string]any{"payload": args[0]})
		return r.Client.Send(ctx, msg.Chat.ID, "Invalid link!", telegram.ModePlain)
	}
	r.armRelay(msg.Chat.ID, id)
	return r.Client.Send(ctx, msg.Chat.ID, "Send your message to the pharmacist:", telegram.ModePlain)
}

func (r *Router) forwardToPharmacist(ctx context.Context, msg *telegram.Message, target int64) error {
	err := r.Client.Send(ctx, target,
		"You have a new anonymous message:\n\n"+msg.Text, telegram.ModePlain)
	if err != nil {
		applog.Error("bot.relay", err, map[string]any{"target": target})
		return r.Client.Send(ctx, msg.Chat.ID,
			"Error sending message. The pharmacist may have blocked the bot.", telegram.ModePlain)
	}
	return r.Client.Send(ctx, msg.Chat.ID, "Message sent to the pharmacist!", telegram.ModePlain)
}

// placeOrder runs the simplified order flow: "/order <name> [qty]".
// With no arguments it keeps the legacy single-medicine behavior.
func (r *Router) placeOrder(ctx context.Context, msg *telegram.Message, args []string) error {
	name := "acetaminophen"
	qty := int64(2)
	if len(args) > 0 {
		q, ok := validate.MedicineQuery(args[0])
		if !ok {
			return r.Client.Send(ctx, msg.Chat.ID, "Usage: /order <medicine> [quantity]", telegram.ModePlain)
		}
		name = q
		if len(args) > 1 {
			qty = validate.Qty(args[1])
		} else {
			qty = 1
		}
	}

	userID := strconv.FormatInt(msg.Chat.ID, 10)
	if msg.From != nil {
		userID = strconv.FormatInt(msg.From.ID, 10)
	}

	conf, err := r.Orders.PlaceOrder(userID, services.MedicineSelector{Name: name}, qty)
	switch {
	case errors.Is(err, domain.ErrMedicineNotFound):
		return r.Client.Send(ctx, msg.Chat.ID, "Medicine not found", telegram.ModePlain)
	case errors.Is(err, domain.ErrInsufficientStock):
		return r.Client.Send(ctx, msg.Chat.ID, "Insufficient stock", telegram.ModePlain)
	case err != nil:
		applog.Error("bot.order", err, map[string]any{"chat_id": msg.Chat.ID})
		return r.Client.Send(ctx, msg.Chat.ID,
			"Could not place your order. Please try again.", telegram.ModePlain)
	}
	return r.Client.Send(ctx, msg.Chat.ID,
		fmt.Sprintf("Your order for %s (x%d) has been placed. Order ID: %s",
			conf.MedicineName, conf.Quantity, conf.OrderID), telegram.ModePlain)
}

func (r *Router) sendInventory(ctx context.Context, chatID int64) error {
	meds, err := r.Inv.List()
	if err != nil {
		applog.Error("bot.inventory", err, map[string]any{"chat_id": chatID})
		return r.Client.Send(ctx, chatID, "Could not load the inventory. Please try again.", telegram.ModePlain)
	}
	if len(meds) == 0 {
		return r.Client.Send(ctx, chatID, "No medicines found in the inventory", telegram.ModePlain)
	}
	return r.Client.Send(ctx, chatID, formatInventory(meds), telegram.ModePlain)
}

func formatInventory(meds []domain.Medicine) string {
	lines := make([]string, 0, len(meds))
	for _, m := range meds {
		lines = append(lines, fmt.Sprintf("🏥 %s\n   Stock: %d units\n   Expires: %s",
			m.Name, m.Stock, m.Expiry().Format("02 Jan 2006")))
	}
	return "Available medicines:\n\n" + strings.Join(lines, "\n\n")
}

func (r *Router) sendMenu(ctx context.Context, chatID int64) error {
	kb := &telegram.ReplyKeyboardMarkup{
		Keyboard: [][]telegram.KeyboardButton{
			{{Text: btnInventory}},
			{{Text: btnOrder}},
			{{Text: btnHelp}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
	return r.Client.SendKeyboard(ctx, chatID,
		"Welcome to the Pharmacy Bot! Please choose an option:", kb)
}

func (r *Router) sendHelp(ctx context.Context, chatID int64) error {
	help := strings.Join([]string{
		"*Pharmacy Bot Help*",
		"",
		"Here are the available commands:",
		"",
		"/start \\- Start interacting with the pharmacy bot",
		"/inventory \\- Check the pharmacy inventory",
		"/order \\- Place a medicine order",
		"/menu \\- Display the main menu",
		"/message \\- Get a link for anonymous messages",
		"/help \\- Display this help information",
		"",
		"To use a command, simply type it or tap on it\\.",
	}, "\n")
	return r.Client.Send(ctx, chatID, help, telegram.ModeMarkdownV2)
}

func (r *Router) armRelay(chatID, target int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.relay[chatID] = target
}

func (r *Router) takeRelay(chatID int64) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.relay[chatID]
	if ok {
		delete(r.relay, chatID)
	}
	return target, ok
}
