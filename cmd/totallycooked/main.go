// TotallyCooked API
// @title       TotallyCooked API
// @version     1.0
// @description Recipe discovery service: ingredient search, AI recipes and food images.
// @BasePath    /
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/wnsghl6272/total-cooked/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx)
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}
