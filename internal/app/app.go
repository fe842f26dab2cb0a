// Package app assembles the gateway from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"lovtiti-ussd/handler"
	"lovtiti-ussd/internal/integrations/paramstore"
	"lovtiti-ussd/internal/integrations/profileapi"
	"lovtiti-ussd/internal/kyc"
	"lovtiti-ussd/internal/metrics"
	"lovtiti-ussd/internal/repository"
	"lovtiti-ussd/internal/session"
	"lovtiti-ussd/internal/usecase"
)

const (
	paramRedisURL        = "redis-url"
	paramProfileAPIToken = "profile-api-token"
)

type sessionStore interface {
	usecase.SessionStore
	Close() error
}

// App is a fully wired gateway.
type App struct {
	Handler  *handler.Handler
	Dialogue *usecase.Dialogue
	Metrics  *metrics.Metrics

	store  sessionStore
	natsCn *nats.Conn
}

// New builds the gateway. AWS clients are only created when a component
// configured in cfg needs them.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Metrics: metrics.New()}

	var params paramstore.Getter
	awsNeeded := cfg.KYCTable != "" || cfg.ParamPrefix != ""
	var dynamo *awsdynamodb.Client
	if awsNeeded {
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("app: load AWS config: %w", err)
		}
		if cfg.ParamPrefix != "" {
			ps, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
			if err != nil {
				return nil, fmt.Errorf("app: create SSM client: %w", err)
			}
			params = ps
		}
		if cfg.KYCTable != "" {
			dynamo = awsdynamodb.NewFromConfig(awsCfg)
		}
	}

	store, err := newSessionStore(ctx, cfg, params, logger)
	if err != nil {
		return nil, err
	}
	a.store = store
	if mem, ok := store.(*session.MemoryStore); ok {
		a.Metrics.TrackSessions(mem.Len)
	}

	sink := kyc.NewFanout().Add("log", kyc.NewLogSink(logger))
	if dynamo != nil {
		repo, err := repository.New(dynamo, cfg.KYCTable)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("app: create kyc repository: %w", err)
		}
		sink.Add("dynamodb", kyc.SinkFunc(repo.SaveSubmission))
	}
	if cfg.ProfileAPIURL != "" {
		var opts []profileapi.Option
		if params != nil {
			opts = append(opts, profileapi.WithTokenParameter(params, paramstore.Key(cfg.ParamPrefix, paramProfileAPIToken)))
		}
		client, err := profileapi.NewClient(cfg.ProfileAPIURL, opts...)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("app: create profile api client: %w", err)
		}
		sink.Add("profile-api", kyc.SinkFunc(client.SubmitKYC))
	}
	if cfg.NATSURL != "" {
		natsURL, err := paramstore.Resolve(ctx, params, cfg.NATSURL)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("app: resolve NATS_URL: %w", err)
		}
		nc, err := nats.Connect(natsURL, nats.Name("lovtiti-ussd"))
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("app: connect nats: %w", err)
		}
		a.natsCn = nc
		ns, err := kyc.NewNATSSink(nc, cfg.NATSSubject)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		sink.Add("nats", ns)
	}

	a.Dialogue, err = usecase.NewDialogue(store, sink,
		usecase.WithRecorder(a.Metrics),
		usecase.WithLogger(logger),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Handler, err = handler.NewHandler(a.Dialogue,
		handler.WithMetrics(a.Metrics.Handler()),
		handler.WithLogger(logger),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	logger.Info("ussd gateway assembled",
		slog.String("session_backend", cfg.SessionBackend),
		slog.Int("kyc_sinks", sink.Len()),
	)
	return a, nil
}

func newSessionStore(ctx context.Context, cfg Config, params paramstore.Getter, logger *slog.Logger) (sessionStore, error) {
	if cfg.SessionBackend != BackendRedis {
		return session.NewMemoryStore(cfg.VacuumEvery, cfg.SessionTTL, logger), nil
	}

	raw := cfg.RedisURL
	if raw == "" {
		raw = paramstore.RefPrefix + paramstore.Key(cfg.ParamPrefix, paramRedisURL)
	}
	redisURL, err := paramstore.Resolve(ctx, params, raw)
	if err != nil {
		return nil, fmt.Errorf("app: resolve redis url: %w", err)
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("app: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("app: ping redis: %w", err)
	}
	return session.NewRedisStore(client, session.WithTTL(cfg.SessionTTL))
}

// Close releases the session store and broker connection.
func (a *App) Close() error {
	var errs []error
	if a.natsCn != nil {
		if err := a.natsCn.Drain(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
