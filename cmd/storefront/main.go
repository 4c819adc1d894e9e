package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/jmoiron/sqlx"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/config"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/handler"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/loyalty"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/notifier"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/server"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/calculator"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/checkout"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/engagement"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/jwttoken"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/orderstatus"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/points"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(start())
}

func start() int {
	config, err := config.NewConfig()
	if err != nil {
		zap.L().Info("error create config", zap.Error(err))
		return 1
	}

	logger, err := newLogger(config)
	if err != nil {
		return 1
	}

	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	repo, closeStorage, err := newStorage(config)
	if err != nil {
		zap.L().Error("error create storage", zap.Error(err))
		return 1
	}

	defer closeStorage()

	catalog, err := loyalty.Load(config.LoyaltyConfig)
	if err != nil {
		zap.L().Error("error load loyalty catalog", zap.Error(err))
		return 1
	}

	rules, err := catalog.PointRules()
	if err != nil {
		zap.L().Error("error build point rules", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := loyalty.Seed(ctx, repo, catalog); err != nil {
		zap.L().Error("error seed loyalty catalog", zap.Error(err))
		return 1
	}

	notify, closeNotifier, err := newNotifier(config)
	if err != nil {
		zap.L().Error("error create notifier", zap.Error(err))
		return 1
	}

	defer closeNotifier()

	var (
		tokens = jwttoken.NewManager(config.JWTSecret)
		engine = points.NewEngine(repo, rules, notify)
		calc   = calculator.New(
			config.FreeShippingThresholdAmount(),
			config.FlatShippingRateAmount(),
			calculator.RateVAT(config.VATRateValue()),
		)
	)

	h := handler.NewHandler(
		repo,
		tokens,
		checkout.NewService(repo, engine, calc),
		orderstatus.NewService(repo),
		engagement.NewService(repo, engine),
	)

	server := server.NewServer(config, h, tokens)

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := server.Start(); err != nil {
			zap.L().Info("error starting server", zap.Error(err))
			return err
		}

		return nil
	})

	<-ctx.Done()

	eg.Go(func() error {
		if err := server.Stop(); err != nil {
			zap.L().Info("error stopping server", zap.Error(err))
			return err
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return 1
	}

	return 0
}

func newLogger(config config.Config) (*zap.Logger, error) {
	if config.IsProduction() {
		return zap.NewProduction()
	}

	return zap.NewDevelopment()
}

func newStorage(config config.Config) (storage.Repository, func(), error) {
	if config.DatabaseURI == "" {
		zap.L().Info("using in-memory storage")
		return storage.NewMemoryStorage(), func() {}, nil
	}

	db, err := sqlx.Connect("postgres", config.DatabaseURI)
	if err != nil {
		return nil, nil, err
	}

	postgresStorage, err := storage.NewPostgresStorage(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return postgresStorage, func() { db.Close() }, nil
}

func newNotifier(config config.Config) (notifier.Notifier, func(), error) {
	var (
		notifiers notifier.Multi
		closers   []func() error
	)

	if config.NotifyURL != "" {
		notifiers = append(notifiers, notifier.NewHTTPNotifier(config.NotifyURL))
	}

	if config.RabbitURL != "" {
		rabbit, err := notifier.NewRabbitNotifier(config.RabbitURL, config.RabbitExchange)
		if err != nil {
			return nil, nil, err
		}

		notifiers = append(notifiers, rabbit)
		closers = append(closers, rabbit.Close)
	}

	closeAll := func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				zap.L().Warn("error close notifier", zap.Error(err))
			}
		}
	}

	switch len(notifiers) {
	case 0:
		return notifier.LogNotifier{}, closeAll, nil
	case 1:
		return notifiers[0], closeAll, nil
	}

	return notifiers, closeAll, nil
}
