package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/rims/internal/access"
	"github.com/iliyamo/rims/internal/auth"
	"github.com/iliyamo/rims/internal/booking"
	"github.com/iliyamo/rims/internal/cache"
	"github.com/iliyamo/rims/internal/config"
	"github.com/iliyamo/rims/internal/database"
	"github.com/iliyamo/rims/internal/handler"
	"github.com/iliyamo/rims/internal/model"
	"github.com/iliyamo/rims/internal/queue"
	"github.com/iliyamo/rims/internal/repository"
	"github.com/iliyamo/rims/internal/router"
)

func serveCmd() *cobra.Command {
	var (
		migrate     bool
		withConsume bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			isolation, _ := cfg.Isolation()

			db, err := database.Open(cfg.DSN(), cfg.DBMaxOpenConns)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()
			if migrate {
				if err := database.Migrate(cmd.Context(), db); err != nil {
					return err
				}
			}

			rdb := config.NewRedisClient(cfg.Redis)
			if rdb == nil {
				log.WithField("addr", cfg.Redis.Addr).Warn("redis unreachable; availability cache and rate limiting disabled")
			} else {
				defer rdb.Close()
			}

			properties := repository.NewPropertyRepo(db)
			bookings := repository.NewBookingRepo(db)
			users := repository.NewUserRepo(db)

			var coord *booking.Coordinator
			avail := cache.NewAvailability(rdb, cache.SourceFunc(func(ctx context.Context, id uint64) (model.Availability, error) {
				return coord.GetAvailability(ctx, id)
			}), cfg.AvailabilityCacheTTL, log.WithField("component", "availability-cache"))

			listeners := []booking.Listener{avail}
			if cfg.RabbitURL != "" {
				listeners = append(listeners, queue.NewPublisher(cfg.RabbitURL, cfg.EventsExchange, log.WithField("component", "publisher")))
			}
			coord = booking.NewCoordinator(repository.NewStore(db, isolation), booking.Config{
				TxTimeout: cfg.TxTimeout,
			}, log.WithField("component", "coordinator"), listeners...)

			authSvc := auth.NewService(users, auth.Config{
				JWTSecret:    cfg.JWTSecret,
				AccessTTLMin: cfg.AccessTTLMin,
				BcryptCost:   cfg.BcryptCost,
			}, log.WithField("component", "auth"))

			e := router.New(router.Deps{
				JWTSecret: cfg.JWTSecret,
				RateLimit: cfg.RateLimit,
				Redis:     rdb,
				DB:        db,
				Auth:      handler.NewAuthHandler(authSvc),
				Access: access.Deps{
					Workflows:    coord,
					Availability: avail,
					Catalog:      properties,
					History:      bookings,
					Payments:     repository.NewPaymentRepo(db),
					Roster:       repository.NewResidentRepo(db),
					Verifier:     authSvc,
					Invalidator:  avail,
					Log:          log,
				},
				Log: log,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				log.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "env": cfg.Env}).Info("listening")
				if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				return e.Shutdown(shutdownCtx)
			})
			if withConsume && cfg.RabbitURL != "" {
				g.Go(func() error {
					c := &queue.Consumer{
						URL:      cfg.RabbitURL,
						Exchange: cfg.EventsExchange,
						Queue:    cfg.EventsQueue,
						LogPath:  cfg.BookingLogPath,
						Log:      log.WithField("component", "booking-consumer"),
					}
					if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						return err
					}
					return nil
				})
			}

			err = g.Wait()
			log.Info("server stopped")
			return err
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create missing tables before serving")
	cmd.Flags().BoolVar(&withConsume, "consume", false, "also run the booking log consumer in this process")
	return cmd
}
