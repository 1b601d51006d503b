package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/wnsghl6272/total-cooked/internal/config"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/airecipes"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/auth"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/health"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/heropool"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/images"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/profile"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/recipes"
)

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, deps Deps, ad AuthDeps) *Server {
	sub := func(name string) *log.Logger {
		return log.New(logger.Writer(), logger.Prefix()+"["+name+"] ", logger.Flags())
	}

	healthHandler := &health.Handler{Log: sub("health"), DB: deps.DB, Cache: deps.Cache, Storage: deps.Storage}
	registerHandler := &auth.HandlerRegister{Log: sub("register"), Users: deps.Users, Hasher: ad.Hasher}
	loginHandler := &auth.HandlerLogin{Log: sub("login"), Users: deps.Users, Hasher: ad.Hasher, Tokens: ad.Tokens}
	logoutHandler := &auth.HandlerLogout{Log: sub("logout"), Tokens: ad.Tokens, Blacklist: ad.Blacklist}
	profileHandler := &profile.Handler{Log: sub("profile"), Users: deps.Users}
	recipesHandler := &recipes.Handler{Log: sub("recipes"), API: deps.Recipes, Recipe: deps.RecipeCache}
	aiHandler := &airecipes.Handler{Log: sub("ai"), LLM: deps.LLM, Recipe: deps.RecipeCache}
	imagesHandler := &images.Handler{Log: sub("dalle"), Gen: deps.ImageGen, Images: deps.ImageCache}
	heroHandler := &heropool.Handler{Log: sub("hero"), Pool: deps.HeroPool}

	srv := &http.Server{
		Addr: cfg.AppPort,
		Handler: newRouter(routes{
			health:   healthHandler,
			register: registerHandler,
			login:    loginHandler,
			logout:   logoutHandler,
			profile:  profileHandler,
			recipes:  recipesHandler,
			ai:       aiHandler,
			images:   imagesHandler,
			hero:     heroHandler,
		}, ad, logger),
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second, // генерация картинок идёт последовательно и долго
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
