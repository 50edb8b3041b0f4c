package service_provider

import (
	"KharitonBot/internal/adapters/config"
	tgcontroller "KharitonBot/internal/adapters/controller/telegram"
	"KharitonBot/internal/adapters/openai"
	"KharitonBot/internal/adapters/repository/postgres"
	"KharitonBot/internal/adapters/repository/redisstate"
	"KharitonBot/internal/domain/repository"
	"KharitonBot/internal/domain/service/dialog"
	"KharitonBot/internal/domain/service/matching"
	"KharitonBot/internal/domain/service/session"
	"KharitonBot/internal/domain/service/topics"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ServiceProvider struct {
	config config.Config
	log    *zap.Logger

	pgPool      *pgxpool.Pool
	redisClient *redis.Client

	sessionService *session.Service
	dialogService  *dialog.Service

	botRunner *tgcontroller.Runner
}

func New() (*ServiceProvider, error) {
	sp := &ServiceProvider{}
	if err := sp.init(); err != nil {
		return nil, err
	}
	return sp, nil
}

func (sp *ServiceProvider) BotRunner() *tgcontroller.Runner {
	return sp.botRunner
}

func (sp *ServiceProvider) SessionService() *session.Service {
	return sp.sessionService
}

func (sp *ServiceProvider) Config() config.Config {
	return sp.config
}

func (sp *ServiceProvider) Logger() *zap.Logger {
	return sp.log
}

func (sp *ServiceProvider) init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	sp.config = cfg

	if cfg.Debug {
		sp.log, err = zap.NewDevelopment()
	} else {
		sp.log, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	ctx := context.Background()

	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if err := pgPool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	sp.pgPool = pgPool

	questionRepo := postgres.NewQuestionRepo(pgPool)
	if err := questionRepo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate questions: %w", err)
	}
	topicRepo := postgres.NewTopicRepo(pgPool)
	if err := topicRepo.Seed(ctx); err != nil {
		return fmt.Errorf("seed topics: %w", err)
	}
	userRepo := postgres.NewUserRepo(pgPool)
	if err := userRepo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}

	sessionRepo, err := sp.initSessionRepo(ctx)
	if err != nil {
		return err
	}

	aiClient, err := openai.New(openai.Config{
		APIKey:      cfg.OpenAIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Temperature: cfg.OpenAITemperature,
		Timeout:     cfg.OpenAITimeout,
	})
	if err != nil {
		return fmt.Errorf("create openai client: %w", err)
	}

	sp.sessionService = session.New(sessionRepo)
	matcher := matching.New(questionRepo, aiClient, matching.Thresholds{
		Strong:  cfg.StrongMatch,
		Weak:    cfg.WeakMatch,
		Similar: cfg.SimilarMatch,
	}, sp.log.Named("matching"))
	topicSvc := topics.New(topicRepo, aiClient, sp.log.Named("topics"))
	sp.dialogService = dialog.New(
		userRepo,
		questionRepo,
		sp.sessionService,
		matcher,
		topicSvc,
		cfg.AdminIDs,
		sp.log.Named("dialog"),
	)

	botRunner, err := tgcontroller.New(cfg.BotToken, sp.dialogService, sp.log.Named("telegram"))
	if err != nil {
		return fmt.Errorf("create telegram controller: %w", err)
	}
	sp.botRunner = botRunner

	sp.log.Info("service provider initialized",
		zap.String("session_store", cfg.SessionStore))
	return nil
}

func (sp *ServiceProvider) initSessionRepo(ctx context.Context) (repository.SessionRepository, error) {
	if sp.config.SessionStore == config.SessionStoreRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     sp.config.RedisAddr,
			Password: sp.config.RedisPassword,
			DB:       sp.config.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		sp.redisClient = client
		return redisstate.NewSessionRepo(client), nil
	}

	repo := postgres.NewSessionRepo(sp.pgPool)
	if err := repo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate sessions: %w", err)
	}
	return repo, nil
}
