package handler

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"catalog/internal/api"
	"catalog/internal/app"
	"catalog/internal/config"
	"catalog/internal/logger"

	"github.com/gin-gonic/gin"
)

var (
	initOnce sync.Once
	router   *gin.Engine
	initErr  error
)

// initRouter builds the application once per process. Serverless platforms
// reuse warm instances, so later requests share the same router.
func initRouter() {
	cfg, err := config.Load()
	if err != nil {
		initErr = fmt.Errorf("load configuration: %w", err)
		return
	}

	log := logger.New(cfg.LogLevel, cfg.Env)
	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		initErr = fmt.Errorf("initialize application: %w", err)
		return
	}

	router = api.New(cfg, log, a.APIDeps()).GetRouter()
}

// Handler is the serverless entry point. It serves the same routes as cmd/api.
func Handler(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(initRouter)
	if initErr != nil {
		http.Error(w, initErr.Error(), http.StatusInternalServerError)
		return
	}
	router.ServeHTTP(w, r)
}
