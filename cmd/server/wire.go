package main

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/artem13815/careerassist/pkg/cache/redis"
	"github.com/artem13815/careerassist/pkg/chat"
	"github.com/artem13815/careerassist/pkg/classifier"
	"github.com/artem13815/careerassist/pkg/config"
	"github.com/artem13815/careerassist/pkg/conversation"
	"github.com/artem13815/careerassist/pkg/enrichment"
	"github.com/artem13815/careerassist/pkg/health"
	"github.com/artem13815/careerassist/pkg/health/checkers"
	"github.com/artem13815/careerassist/pkg/jobs"
	"github.com/artem13815/careerassist/pkg/jobs/jsearch"
	"github.com/artem13815/careerassist/pkg/llm"
	"github.com/artem13815/careerassist/pkg/llm/gemini"
	"github.com/artem13815/careerassist/pkg/llm/openai"
	"github.com/artem13815/careerassist/pkg/llm/openrouter"
	"github.com/artem13815/careerassist/pkg/logging"
	"github.com/artem13815/careerassist/pkg/nlp"
	boltrepo "github.com/artem13815/careerassist/pkg/repository/bolt"
	pgrepo "github.com/artem13815/careerassist/pkg/repository/postgres"
	"github.com/artem13815/careerassist/pkg/storage/postgres"
)

type deps struct {
	chat      chat.UseCase
	readiness health.ReadinessUseCase
	closers   []func()
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// build wires the chat use case and its backends from cfg.
func build(ctx context.Context, cfg config.Config) (*deps, error) {
	d := &deps{}
	var probes []health.Checker
	fail := func(err error) (*deps, error) {
		d.close()
		return nil, err
	}

	model, err := newChatModel(ctx, cfg)
	if err != nil {
		return fail(err)
	}

	var searcher jobs.Searcher
	var salaries jobs.SalaryEstimator
	provider := jsearch.New(cfg.JobAPIKey,
		jsearch.WithBaseURL(cfg.JobAPIBaseURL),
		jsearch.WithHost(cfg.JobAPIHost),
		jsearch.WithSalaryRadius(cfg.SalaryRadius),
	)
	searcher, salaries = provider, provider
	if cfg.JobAPIKey == "" {
		logging.Default().Warn("JOB_API_KEY is not set, job and salary enrichment will be skipped")
		searcher, salaries = nil, nil
	}

	if cfg.RedisURL != "" && searcher != nil {
		client, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fail(err)
		}
		d.closers = append(d.closers, func() { _ = client.Close() })
		probes = append(probes, checkers.NewRedisChecker(client))
		cache := jobs.NewCache(client, cfg.CacheTTL, searcher, salaries)
		searcher, salaries = cache, cache
	}

	detector, err := newDetector(cfg)
	if err != nil {
		return fail(err)
	}

	store, storeProbes, err := newStore(ctx, cfg, d)
	if err != nil {
		return fail(err)
	}
	probes = append(probes, storeProbes...)

	gate := classifier.NewService(model, cfg.ClassifierModel, cfg.ClassifierMaxTokens, cfg.ProviderTimeout)
	pipeline := enrichment.New(detector, searcher, salaries,
		enrichment.WithJobLimit(cfg.JobResultLimit),
		enrichment.WithTimeout(cfg.ProviderTimeout),
	)
	d.chat = chat.NewService(gate, pipeline, store, model, nlp.NewTokenCounter(), chat.Config{
		Model:            cfg.AdviceModel,
		MaxTokens:        cfg.AdviceMaxTokens,
		Timeout:          cfg.ProviderTimeout,
		MaxMessageTokens: cfg.MaxMessageTokens,
	})
	d.readiness = health.NewService(probes...)
	return d, nil
}

func newChatModel(ctx context.Context, cfg config.Config) (llm.ChatModel, error) {
	switch cfg.LLMProvider {
	case "", "openai":
		return openai.New(cfg.OpenAIAPIKey, openai.WithBaseURL(cfg.OpenAIBaseURL))
	case "openrouter":
		if cfg.OpenRouterAPIKey == "" {
			return nil, goerr.New("OPENROUTER_API_KEY is required")
		}
		return openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterBase, cfg.OpenRouterAppTitle, cfg.OpenRouterReferer), nil
	case "gemini":
		return gemini.New(ctx, cfg.GeminiAPIKey)
	default:
		return nil, goerr.New("unknown LLM_PROVIDER", goerr.V("provider", cfg.LLMProvider))
	}
}

func newDetector(cfg config.Config) (nlp.IntentDetector, error) {
	kw := nlp.DefaultKeywords()
	if cfg.IntentsFile != "" {
		var err error
		if kw, err = nlp.LoadKeywords(cfg.IntentsFile); err != nil {
			return nil, err
		}
	}
	return nlp.NewKeywordDetector(kw), nil
}

func newStore(ctx context.Context, cfg config.Config, d *deps) (*conversation.Store, []health.Checker, error) {
	switch cfg.StoreBackend {
	case "", "memory":
		return conversation.NewStore(), nil, nil
	case "bolt":
		repo, err := boltrepo.Open(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		d.closers = append(d.closers, func() { _ = repo.Close() })
		return conversation.NewStore(conversation.WithRepository(repo)), nil, nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, goerr.New("DATABASE_URL is required for STORE_BACKEND=postgres")
		}
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		d.closers = append(d.closers, pool.Close)
		if err := postgres.Migrate(ctx, pool); err != nil {
			return nil, nil, err
		}
		repo := pgrepo.NewConversationRepository(pool)
		return conversation.NewStore(conversation.WithRepository(repo)),
			[]health.Checker{checkers.NewPostgresChecker(pool)}, nil
	default:
		return nil, nil, goerr.New("unknown STORE_BACKEND", goerr.V("backend", cfg.StoreBackend))
	}
}
