package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	applog "pharmabot/internal/log"
	"pharmabot/internal/telegram"
)

type restrictKind int

const (
	restrictBan restrictKind = iota
	restrictMute
)

// kick removes the author of the replied-to message from the chat.
func (r *Router) kick(ctx context.Context, msg *telegram.Message) error {
	target, ok := repliedUser(msg)
	if !ok {
		return r.Client.Send(ctx, msg.Chat.ID,
			"Use this command in reply to another message", telegram.ModePlain)
	}
	if err := r.Client.UnbanChatMember(ctx, msg.Chat.ID, target.ID); err != nil {
		applog.Error("bot.kick", err, map[string]any{"chat_id": msg.Chat.ID, "user_id": target.ID})
		return r.Client.Send(ctx, msg.Chat.ID, "Couldn't kick the user.", telegram.ModePlain)
	}
	return r.Client.Send(ctx, msg.Chat.ID,
		fmt.Sprintf("User %s has been kicked.", target.FirstName), telegram.ModePlain)
}

// restrict applies a timed ban or mute to the replied-to user, e.g.
// "/ban 2 h" or "/mute 30 m".
func (r *Router) restrict(ctx context.Context, msg *telegram.Message, args []string, kind restrictKind) error {
	target, ok := repliedUser(msg)
	if !ok {
		return r.Client.Send(ctx, msg.Chat.ID,
			"Use this command in a reply to another message!", telegram.ModePlain)
	}
	d, ok := parseRestrictTime(args)
	if !ok {
		return r.Client.Send(ctx, msg.Chat.ID,
			"Usage: reply with the command followed by a duration, e.g. 2 h (allowed units: h, m, s)", telegram.ModePlain)
	}

	until := time.Unix(msg.Date, 0).Add(d)
	var err error
	var verb string
	switch kind {
	case restrictBan:
		verb = "banned"
		err = r.Client.BanChatMember(ctx, msg.Chat.ID, target.ID, until)
	case restrictMute:
		verb = "muted"
		err = r.Client.RestrictChatMember(ctx, msg.Chat.ID, target.ID, until)
	}
	if err != nil {
		applog.Error("bot.restrict", err, map[string]any{"chat_id": msg.Chat.ID, "user_id": target.ID})
		return r.Client.Send(ctx, msg.Chat.ID, "Couldn't apply the restriction.", telegram.ModePlain)
	}
	return r.Client.Send(ctx, msg.Chat.ID,
		fmt.Sprintf("User %s has been %s for the specified duration.", target.FirstName, verb), telegram.ModePlain)
}

func repliedUser(msg *telegram.Message) (*telegram.User, bool) {
	if msg.ReplyTo == nil || msg.ReplyTo.From == nil {
		return nil, false
	}
	return msg.ReplyTo.From, true
}

// parseRestrictTime parses "<n> <unit>" with units h, m, s.
func parseRestrictTime(args []string) (time.Duration, bool) {
	if len(args) != 2 {
		return 0, false
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	switch args[1] {
	case "h", "hours":
		return time.Duration(n) * time.Hour, true
	case "m", "minutes":
		return time.Duration(n) * time.Minute, true
	case "s", "seconds":
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}
