package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wnsghl6272/total-cooked/internal/auth/blacklist"
	"github.com/wnsghl6272/total-cooked/internal/auth/password"
	"github.com/wnsghl6272/total-cooked/internal/auth/token"
	"github.com/wnsghl6272/total-cooked/internal/cache"
	"github.com/wnsghl6272/total-cooked/internal/clients/dalle"
	"github.com/wnsghl6272/total-cooked/internal/clients/openai"
	"github.com/wnsghl6272/total-cooked/internal/clients/spoonacular"
	"github.com/wnsghl6272/total-cooked/internal/config"
	"github.com/wnsghl6272/total-cooked/internal/domain"
	"github.com/wnsghl6272/total-cooked/internal/heropool"
	redisx "github.com/wnsghl6272/total-cooked/internal/infra/cache/redis"
	"github.com/wnsghl6272/total-cooked/internal/infra/database/postgres"
	s3storage "github.com/wnsghl6272/total-cooked/internal/infra/storage/s3"
	"github.com/wnsghl6272/total-cooked/internal/transport/web"
)

type App struct {
	config *config.Config
	server *web.Server
	log    *log.Logger
	repo   *postgres.PGRepo
	cache  *redisx.Cache
	hero   *heropool.Manager
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	pgLog := log.New(base.Writer(), base.Prefix()+"[postgres] ", base.Flags())
	s3Log := log.New(base.Writer(), base.Prefix()+"[s3] ", base.Flags())
	redisLog := log.New(base.Writer(), base.Prefix()+"[redis] ", base.Flags())
	cacheLog := log.New(base.Writer(), base.Prefix()+"[cache] ", base.Flags())
	clientsLog := log.New(base.Writer(), base.Prefix()+"[clients] ", base.Flags())
	heroLog := log.New(base.Writer(), base.Prefix()+"[hero] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	base.Println("init PostgreSQL")
	pgRepo, err := postgres.NewPGRepo(ctx, pgLog, cfg.GetDSN(), cfg.DBScheme)
	if err != nil {
		return nil, fmt.Errorf("failed init postgres: %w", err)
	}
	base.Println("PostgreSQL is initialized")

	base.Println("init Redis")
	rc := redisx.New(redisx.Config{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	}, redisLog)
	if err := rc.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed init redis: %w", err)
	}
	base.Println("Redis is initialized")

	// Зеркало картинок — опционально: без S3 раздаём ссылки вендора как есть.
	var (
		s3       *s3storage.Storage
		mirror   dalle.Mirror
		s3Pinger interface{ Ping(context.Context) error }
	)
	if cfg.S3Endpoint != "" {
		base.Println("init S3 storage")
		s3, err = s3storage.New(ctx, s3storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PathStyle: cfg.S3PathStyle,
			PublicURL: cfg.S3PublicURL,
		}, s3Log)
		if err != nil {
			return nil, fmt.Errorf("failed init s3: %w", err)
		}
		mirror = s3
		s3Pinger = s3
	}

	// Внешние API
	spoon := spoonacular.New(cfg.SpoonacularKey, cfg.SpoonacularBase, clientsLog)
	llm := openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL, clientsLog)
	imgGen := dalle.New(cfg.OpenAIKey, cfg.OpenAIBaseURL, mirror, clientsLog)

	// Кеши поверх таблиц Postgres
	recipeCache := cache.New(pgRepo.RecipeCache(), domain.RecipeCacheTTL, cacheLog)
	imageCache := cache.New(pgRepo.DalleCache(), domain.ImageCacheTTL, cacheLog)
	heroCache := cache.New(pgRepo.DalleCache(), domain.HeroPoolTTL, cacheLog)

	hero := heropool.New(heroCache, imgGen, heroLog)

	// Auth primitives
	hasher := password.NewDefault()
	tm := token.New(cfg.AuthJWTSecret, cfg.AuthIssuer, cfg.AuthTokenTTL)
	bl := blacklist.NewStore(rc, "jti:")

	base.Println("init Server")
	deps := web.Deps{
		Users:       pgRepo,
		Recipes:     spoon,
		LLM:         llm,
		ImageGen:    imgGen,
		HeroPool:    hero,
		RecipeCache: recipeCache,
		ImageCache:  imageCache,
		DB:          pgRepo,
		Cache:       rc,
		Storage:     s3Pinger,
	}
	auth := web.AuthDeps{Hasher: hasher, Tokens: tm, Blacklist: bl}
	server := web.New(serverLog, cfg, deps, auth)
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config: cfg,
		server: server,
		log:    base,
		repo:   pgRepo,
		cache:  rc,
		hero:   hero,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")

	// Пул hero-картинок заполняем в фоне, если он пуст или протух.
	go func() {
		if a.hero.NeedsRefresh(ctx) {
			a.hero.Generate(ctx)
		}
	}()

	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	a.repo.Close()
	a.cache.Close()

	return nil
}
