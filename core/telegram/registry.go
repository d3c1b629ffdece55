package telegram

import (
	"context"
	"sort"

	"github.com/m3rciful/grocerybot/core/logger"
	"github.com/m3rciful/grocerybot/core/telegram/commands"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Registry holds the slash commands advertised to Telegram clients.
type Registry struct {
	commands map[string]commands.Command
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]commands.Command)}
}

// RegisterCommand adds a new command. Invalid and duplicate names are skipped.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	if r == nil || name == "" || cmd.Description == "" {
		logger.Warn(context.Background(), "tg.wire", "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "invalid"),
		)
		return
	}
	if name[0] != '/' {
		logger.Warn(context.Background(), "tg.wire", "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "no_slash_prefix"),
		)
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.Warn(context.Background(), "tg.wire", "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.commands[name] = cmd
}

// ListCommands returns commands sorted by name. Hidden commands are never
// listed; admin-only ones only when includeAdmin is set.
func (r *Registry) ListCommands(includeAdmin bool) []tele.Command {
	var list []tele.Command
	for cmd, meta := range r.commands {
		if meta.Hidden || (meta.AdminOnly && !includeAdmin) {
			continue
		}
		list = append(list, tele.Command{Text: cmd, Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// InitBotCommands publishes the command menu. When adminID is set the
// operator's private chat also lists admin-only commands.
func InitBotCommands(bot *tele.Bot, reg *Registry, adminID int64) {
	if bot == nil || reg == nil {
		return
	}
	if err := bot.SetCommands(reg.ListCommands(false)); err != nil {
		logger.Error(context.Background(), "tg.wire", "register.commands.set_failed",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	if adminID == 0 {
		return
	}
	scope := tele.CommandScope{Type: tele.CommandScopeChat, ChatID: adminID}
	if err := bot.SetCommands(reg.ListCommands(true), scope); err != nil {
		logger.Error(context.Background(), "tg.wire", "register.commands.set_failed",
			slog.String("status", "fail"),
			slog.String("scope", "admin"),
			slog.String("err", err.Error()),
		)
	}
}
