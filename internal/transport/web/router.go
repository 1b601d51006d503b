package web

import (
	"log"
	"net/http"

	_ "github.com/wnsghl6272/total-cooked/internal/docs"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/mw"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/airecipes"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/auth"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/health"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/heropool"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/images"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/profile"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/recipes"
	httpSwagger "github.com/swaggo/http-swagger"
)

type routes struct {
	health   *health.Handler
	register *auth.HandlerRegister
	login    *auth.HandlerLogin
	logout   *auth.HandlerLogout
	profile  *profile.Handler
	recipes  *recipes.Handler
	ai       *airecipes.Handler
	images   *images.Handler
	hero     *heropool.Handler
}

func newRouter(rt routes, ad AuthDeps, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()
	guard := mw.AuthDeps{Tokens: ad.Tokens, Blacklist: ad.Blacklist}
	authed := func(h http.HandlerFunc) http.Handler { return mw.RequireAuth(guard, h) }

	// health
	mux.HandleFunc("GET /healthz", rt.health.Liveness)
	mux.HandleFunc("GET /readyz", rt.health.Readiness)

	// аккаунты
	mux.HandleFunc("POST /api/register", limitBody(1<<20, rt.register.Register))
	mux.HandleFunc("POST /api/auth", limitBody(1<<20, rt.login.Login))
	mux.HandleFunc("DELETE /api/auth/{token}", rt.logout.Logout)
	mux.Handle("GET /api/profile", authed(rt.profile.Get))

	// рецепты и ингредиенты
	mux.HandleFunc("GET /api/recipes", rt.recipes.Search)
	mux.HandleFunc("GET /api/recipes/{id}", rt.recipes.ByID)
	mux.HandleFunc("GET /api/ingredients", rt.recipes.Ingredients)

	// AI
	mux.HandleFunc("GET /api/ai-suggestions", rt.ai.Suggestions)
	mux.HandleFunc("GET /api/ai-recipes/{slug}", rt.ai.Details)

	// кеш рецептов
	mux.HandleFunc("GET /api/recipes-cache", rt.recipes.CacheList)
	mux.Handle("DELETE /api/recipes-cache", authed(rt.recipes.CachePurge))

	// картинки
	mux.HandleFunc("GET /api/dalle", rt.images.Generate)
	mux.HandleFunc("GET /api/hero-pool", rt.hero.Manage)
	mux.Handle("POST /api/hero-pool", authed(limitBody(1<<20, rt.hero.ManagePost)))

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	return mw.WithRequestID(mw.Logging(logger)(mux))
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h(w, r)
	}
}
