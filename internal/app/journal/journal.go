// Package journal собирает приложение: хранилища, клиентов внешних
// сервисов, координаторы эффектов и политики поверх единого store.
// Отдельный HTTP-сервер поднимается только для отладки (метрики, health).
package journal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/wellbeing-journal/internal/cache"
	"github.com/magabrotheeeer/wellbeing-journal/internal/client/otp"
	"github.com/magabrotheeeer/wellbeing-journal/internal/client/receipt"
	"github.com/magabrotheeeer/wellbeing-journal/internal/config"
	diaryfx "github.com/magabrotheeeer/wellbeing-journal/internal/effects/diary"
	explorefx "github.com/magabrotheeeer/wellbeing-journal/internal/effects/explore"
	identityfx "github.com/magabrotheeeer/wellbeing-journal/internal/effects/identity"
	purchasefx "github.com/magabrotheeeer/wellbeing-journal/internal/effects/purchase"
	"github.com/magabrotheeeer/wellbeing-journal/internal/effects/runner"
	"github.com/magabrotheeeer/wellbeing-journal/internal/http/handlers/health"
	"github.com/magabrotheeeer/wellbeing-journal/internal/market"
	"github.com/magabrotheeeer/wellbeing-journal/internal/migrations"
	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
	"github.com/magabrotheeeer/wellbeing-journal/internal/notify"
	"github.com/magabrotheeeer/wellbeing-journal/internal/policy/entitlement"
	"github.com/magabrotheeeer/wellbeing-journal/internal/policy/reminder"
	"github.com/magabrotheeeer/wellbeing-journal/internal/storage/authpg"
	"github.com/magabrotheeeer/wellbeing-journal/internal/storage/docstore"
	"github.com/magabrotheeeer/wellbeing-journal/internal/store"
)

// App собранное приложение журнала.
type App struct {
	logger *slog.Logger
	server *http.Server

	db     *docstore.Storage
	cache  *cache.Cache
	rabbit *amqp.Connection

	store       *store.Store
	purchase    *purchasefx.Coordinator
	entitlement *entitlement.Policy
	reminder    *reminder.Observer
}

// New инициализирует все зависимости приложения. marketplace — привязка
// к магазину покупок платформы, передаётся встраивающей стороной.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, marketplace market.Marketplace) (*App, error) {
	db, err := docstore.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := notify.Connect(cfg.AddressRabbit, 5, 2*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := notify.SetupChannel(rabbitConn, notify.Queues(cfg.ReminderQueue, cfg.EmailQueue))
	if err != nil {
		return nil, err
	}
	scheduler := notify.NewQueueScheduler(ch)
	mailer := notify.NewQueueMailer(ch)

	st := store.New(logger, cacheRedis)

	tokens := authpg.NewTokenMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	auth := authpg.New(db.DB, tokens, mailer)
	validator := receipt.New(cfg.ReceiptValidatorURL, models.Platform(cfg.Platform), cfg.ValidationTimeout)
	otpClient := otp.New(cfg.SendOTPURL, cfg.VerifyOTPURL, cfg.OTPResendInterval, cfg.ValidationTimeout)

	r := runner.New()

	identityCoord := identityfx.New(logger, st, auth, db, otpClient, r)
	diaryCoord := diaryfx.New(logger, st, db, r)
	exploreCoord := explorefx.New(logger, st, db, r)
	purchaseCoord := purchasefx.New(logger, st, marketplace, validator, db, r,
		models.Platform(cfg.Platform), cfg.SubscriptionIDs)

	entitlementPolicy := entitlement.New()
	reminderObserver := reminder.NewObserver(logger, scheduler, nil)

	st.Register(identityCoord.Handle)
	st.Register(diaryCoord.Handle)
	st.Register(exploreCoord.Handle)
	st.Register(purchaseCoord.Handle)
	st.Register(entitlementPolicy.Handle)
	st.Register(reminderObserver.Handle)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/health", health.New(logger, map[string]health.Pinger{
		"postgres": health.PingFunc(func(_ *http.Request) error {
			return docstore.CheckDatabaseReady(db)
		}),
		"redis": health.PingFunc(func(r *http.Request) error {
			return cacheRedis.Db.Ping(r.Context()).Err()
		}),
	}).ServeHTTP)

	srv := &http.Server{
		Addr:         cfg.AddressDebug,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutDebug,
		WriteTimeout: cfg.TimeoutDebug,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		logger:      logger,
		server:      srv,
		db:          db,
		cache:       cacheRedis,
		rabbit:      rabbitConn,
		store:       st,
		purchase:    purchaseCoord,
		entitlement: entitlementPolicy,
		reminder:    reminderObserver,
	}, nil
}

// Store возвращает store приложения для привязки UI.
func (a *App) Store() *store.Store { return a.store }

// Entitlement возвращает политику права на премиум.
func (a *App) Entitlement() *entitlement.Policy { return a.entitlement }

// Run запускает цикл диспетчеризации, слушатель потока покупок,
// применение расписаний напоминаний и отладочный HTTP-сервер.
// Блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	go a.store.Run(ctx)
	go a.purchase.Run(ctx, a.currentUID)
	go a.reminder.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("debug HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.Close()
		_ = a.cache.Close()
		_ = a.rabbit.Close()
		return err
	}
}

func (a *App) currentUID() string {
	if u := a.store.State().Identity.User; u != nil {
		return u.UID
	}
	return ""
}
