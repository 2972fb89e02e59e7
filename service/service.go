package service

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"rifa/admin"
	"rifa/content"
	"rifa/entity"
	"rifa/gateway"
	"rifa/http"
	"rifa/occupancy"
	"rifa/pkg/log"
	"rifa/pubsub"
	"rifa/pubsub/bus"
	"rifa/pubsub/command"
	"rifa/pubsub/event"
	"rifa/purchase"
)

func init() {
	log.Init(logrus.InfoLevel)
}

// TablesGateway is everything the service needs from the persistence
// service's REST surface.
type TablesGateway interface {
	content.Gateway

	FetchTickets(ctx context.Context) ([]entity.Ticket, error)
	InsertTicket(ctx context.Context, ticket entity.Ticket) error
	UpdateTicket(ctx context.Context, id int64, patch map[string]any) (entity.Ticket, error)
	DeleteTicket(ctx context.Context, id int64) error
	OccupiedNumbers(ctx context.Context) ([]int, error)
}

type Storage interface {
	Upload(ctx context.Context, data []byte, contentType, bucket, path string) (string, error)
}

type Auth interface {
	Login(ctx context.Context, email, password string) (gateway.Session, error)
	Register(ctx context.Context, email, password string) (gateway.Session, error)
	Logout(ctx context.Context, accessToken string) error
	AuthStates() <-chan gateway.AuthState
}

type Service struct {
	watermillRouter *message.Router
	httpServer      *http.Server
	contentStore    *content.Store
	tracker         *occupancy.Tracker
	purchases       *purchase.Service
	auth            Auth
}

func New(
	addr string,
	redisClient *redis.Client,
	tables TablesGateway,
	storage Storage,
	auth Auth,
	jwtSecret string,
	assetsBucket string,
	artifactBucket string,
) Service {
	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	redisPublisher := pubsub.NewRedisPublisher(redisClient, watermillLogger)

	eventBus, err := bus.NewEventBus(redisPublisher)
	if err != nil {
		panic(fmt.Errorf("failed to create event bus: %w", err))
	}

	commandBus, err := bus.NewCommandBus(redisPublisher)
	if err != nil {
		panic(fmt.Errorf("failed to create command bus: %w", err))
	}

	tracker := occupancy.NewTracker(tables)
	contentStore := content.NewStore(tables)
	purchases := purchase.NewService(tracker, tables, contentStore, eventBus)
	adminOps := admin.NewOps(tables, tracker, eventBus)

	eventsHandler := event.NewHandler(tracker, storage, artifactBucket)
	commandsHandler := command.NewHandler(adminOps)

	eventProcessorConfig := event.NewProcessorConfig(redisClient, watermillLogger)
	commandProcessorConfig := command.NewProcessorConfig(redisClient, watermillLogger)

	watermillRouter, err := pubsub.NewWatermillRouter(
		eventProcessorConfig,
		eventsHandler,
		commandProcessorConfig,
		commandsHandler,
		watermillLogger,
	)
	if err != nil {
		panic(fmt.Errorf("failed to create watermill router: %w", err))
	}

	httpServer := http.NewServer(
		addr,
		commandBus,
		purchases,
		contentStore,
		tracker,
		adminOps,
		auth,
		storage,
		jwtSecret,
		assetsBucket,
	)

	return Service{
		watermillRouter: watermillRouter,
		httpServer:      httpServer,
		contentStore:    contentStore,
		tracker:         tracker,
		purchases:       purchases,
		auth:            auth,
	}
}

func (s Service) Run(ctx context.Context) error {
	if err := s.contentStore.Load(ctx); err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	if err := s.tracker.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load occupied numbers: %w", err)
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc("@every 1m", func() {
		if err := s.tracker.Refresh(ctx); err != nil {
			log.FromContext(ctx).WithError(err).Warn("scheduled occupancy refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule occupancy refresh: %w", err)
	}
	_, err = scheduler.AddFunc("@every 30s", func() {
		s.purchases.ExpireStale(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule purchase expiry: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		// don't serve HTTP before the router consumes, so the service is
		// not reported healthy while half-started
		<-s.watermillRouter.Running()

		scheduler.Start()

		err := s.httpServer.Run(ctx)
		if err != nil {
			return err
		}

		return nil
	})

	g.Go(func() error {
		// operators see the freshest ticket list right after logging in
		for {
			select {
			case <-ctx.Done():
				return nil
			case state := <-s.auth.AuthStates():
				if !state.Authenticated {
					continue
				}
				if _, err := s.tracker.RefreshFull(ctx); err != nil {
					log.FromContext(ctx).WithError(err).Warn("post-login refresh failed")
				}
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		scheduler.Stop()
		return nil
	})

	return g.Wait()
}
