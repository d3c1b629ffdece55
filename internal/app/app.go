// Package app wires the grocery bot together and exposes it to the core runner.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/grocerybot/core/bootstrap"
	corecmd "github.com/m3rciful/grocerybot/core/cmd"
	coredatabase "github.com/m3rciful/grocerybot/core/database"
	"github.com/m3rciful/grocerybot/core/logger"
	coretelegram "github.com/m3rciful/grocerybot/core/telegram"
	"github.com/m3rciful/grocerybot/core/telegram/commands"
	"github.com/m3rciful/grocerybot/core/telegram/router"
	tgsender "github.com/m3rciful/grocerybot/core/telegram/sender"
	"github.com/m3rciful/grocerybot/internal/cart"
	"github.com/m3rciful/grocerybot/internal/catalog"
	"github.com/m3rciful/grocerybot/internal/config"
	"github.com/m3rciful/grocerybot/internal/conversation"
	"github.com/m3rciful/grocerybot/internal/events"
	"github.com/m3rciful/grocerybot/internal/httpapi"
	"github.com/m3rciful/grocerybot/internal/jobs"
	"github.com/m3rciful/grocerybot/internal/notify"
	"github.com/m3rciful/grocerybot/internal/orders"
	"github.com/m3rciful/grocerybot/internal/session"
	"github.com/m3rciful/grocerybot/internal/sheets"
	"github.com/m3rciful/grocerybot/internal/telegrambot"

	tele "gopkg.in/telebot.v4"
)

const component = "app"

// Deps carries infrastructure created outside the app. Nil fields are built
// from configuration.
type Deps struct {
	DB  *sqlx.DB
	Bot *tele.Bot
	// Events overrides the NATS connection.
	Events events.Conn
}

// App holds the wired components of a running bot.
type App struct {
	cfg *config.Config
	db  *sqlx.DB

	bot        *tele.Bot
	sender     *tgsender.Dispatcher
	registry   *coretelegram.Registry
	orders     *orders.Service
	dispatcher *conversation.Dispatcher
	handlers   *telegrambot.Handlers

	publisher *events.Publisher
	api       *httpapi.Server
	digest    *jobs.PendingDigestJob
}

// LoadConfig adapts config.Load to the core runner.
func LoadConfig(path string) (corecmd.ConfigCarrier, error) {
	return config.Load(path)
}

// Bootstrap initializes logging and storage, then builds the app.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	var database *coredatabase.Config
	if cfg.UsesPostgres() {
		database = &cfg.Database
	}
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: database,
	})
	if err != nil {
		return nil, err
	}
	return New(context.Background(), cfg, Deps{DB: res.DB})
}

// New builds every component from cfg.
func New(ctx context.Context, cfg *config.Config, deps Deps) (_ *App, err error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	a := &App{cfg: cfg, db: deps.DB}
	defer func() {
		if err != nil {
			a.release()
		}
	}()

	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	pricing, err := cfg.Shop.Pricing()
	if err != nil {
		return nil, err
	}
	ledger, err := a.ledger()
	if err != nil {
		return nil, err
	}

	a.bot = deps.Bot
	if a.bot == nil {
		if a.bot, err = coretelegram.NewBot(cfg.CoreConfig()); err != nil {
			return nil, err
		}
	}
	a.sender = tgsender.NewDispatcher(cfg.Sender.Options())
	out := telegrambot.NewMessenger(a.bot, a.sender)
	notifier := notify.New(out, cfg.Telegram.AdminID)

	conn := deps.Events
	if conn == nil && cfg.Events.NATSURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		nc, connectErr := events.Connect(connectCtx, cfg.Events.NATSURL, cfg.Events.ClientName)
		cancel()
		if connectErr != nil {
			return nil, connectErr
		}
		conn = nc
	}
	var publisher orders.Publisher
	if conn != nil {
		a.publisher = events.NewPublisher(conn, cfg.Events.SubjectPrefix)
		publisher = a.publisher
	}

	a.orders, err = orders.NewService(orders.Options{
		Ledger:     ledger,
		OperatorID: cfg.Telegram.AdminID,
		Pricing:    pricing,
		Sink:       sheets.New(cfg.Sheets.URL, nil, cfg.Sheets.Timeout),
		Notifier:   notifier,
		Publisher:  publisher,
	})
	if err != nil {
		return nil, err
	}

	engine, err := conversation.NewEngine(conversation.Options{
		Catalog:          cat,
		Carts:            cart.NewMemoryStore(),
		Sessions:         session.NewMemoryStore(),
		Orders:           a.orders,
		Out:              out,
		AskPaymentMethod: cfg.Shop.AskPaymentMethod,
	})
	if err != nil {
		return nil, err
	}
	a.dispatcher = conversation.NewDispatcher(engine)
	a.handlers = telegrambot.NewHandlers(a.dispatcher, a.sender)
	a.registry = newRegistry()

	if cfg.HTTP.Listen != "" {
		a.api = httpapi.New(a.orders, httpapi.Options{Listen: cfg.HTTP.Listen, Token: cfg.HTTP.Token})
	}
	if cfg.Jobs.PendingDigest != "" {
		a.digest = jobs.NewPendingDigestJob(a.orders, notifier, cfg.Jobs.PendingDigest)
	}

	logger.Info(ctx, component, "wired",
		slog.String("storage", cfg.Storage.Driver),
		slog.Int("categories", len(cat.Categories())),
		slog.Bool("ask_payment_method", cfg.Shop.AskPaymentMethod),
		slog.Bool("sheets", cfg.Sheets.URL != ""),
		slog.Bool("events", a.publisher != nil),
		slog.Bool("http", a.api != nil),
		slog.Bool("digest", a.digest != nil),
	)
	return a, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("app: load catalog: %w", err)
	}
	return cat, nil
}

func (a *App) ledger() (orders.Ledger, error) {
	if !a.cfg.UsesPostgres() {
		return orders.NewMemoryLedger(), nil
	}
	if a.db == nil {
		return nil, errors.New("app: postgres storage selected but no database connection")
	}
	return orders.NewPostgresLedger(a.db), nil
}

func newRegistry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Description: "Open the main menu"})
	reg.RegisterCommand("/shop", commands.Command{Description: "Browse the catalog"})
	reg.RegisterCommand("/cart", commands.Command{Description: "Show your cart"})
	reg.RegisterCommand("/orders", commands.Command{Description: "Your recent orders"})
	reg.RegisterCommand("/help", commands.Command{Description: "How ordering works"})
	reg.RegisterCommand("/cancel", commands.Command{Description: "Leave checkout", Hidden: true})
	reg.RegisterCommand("/pending", commands.Command{Description: "Orders awaiting shipment", AdminOnly: true})
	return reg
}

// Orders exposes the order service.
func (a *App) Orders() *orders.Service { return a.orders }

// TelegramRunOptions implements the core runner contract.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Bot:         a.bot,
		Registry:    a.registry,
		Dispatcher:  a.sender,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      router.UpdateRoutes(a.handlers.Routes()),
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, _ coretelegram.Runtime) error {
	if a.digest != nil {
		if err := a.digest.Start(); err != nil {
			return err
		}
	}
	if a.api != nil {
		a.api.Start()
	}
	logger.Info(ctx, component, "components.started",
		slog.String("status", "ok"),
	)
	return nil
}

func (a *App) onStop(ctx context.Context, _ coretelegram.Runtime) error {
	var errs []error
	if a.digest != nil {
		a.digest.Stop()
	}
	if a.api != nil {
		if err := a.api.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("app: http shutdown: %w", err))
		}
	}
	a.close()
	err := errors.Join(errs...)
	logger.Info(ctx, component, "components.stopped",
		slog.String("status", logger.Status(err)),
	)
	return err
}

// release undoes a partial New.
func (a *App) release() {
	if a.sender != nil {
		a.sender.Close()
	}
	a.close()
}

// close releases connections. The sender is closed by the runtime.
func (a *App) close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logger.Warn(context.Background(), component, "db.close",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}
}

var _ corecmd.TelegramApp = (*App)(nil)
