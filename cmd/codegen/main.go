package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/suportehub/helpdesk-service/internal/config"
	"github.com/suportehub/helpdesk-service/internal/observability"
	"github.com/suportehub/helpdesk-service/internal/persistence"
	"github.com/suportehub/helpdesk-service/internal/repository"
	"github.com/suportehub/helpdesk-service/internal/service"
)

// codegen mints a batch of agent invitation codes from the command line,
// for operators who hand codes out over other channels.
func main() {
	count := flag.Int("count", 5, "number of codes to generate")
	flag.Parse()

	if *count <= 0 {
		log.Fatal("count must be positive")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:      repository.NewUserRepository(pool),
		AgentCodeRepo: repository.NewAgentCodeRepository(pool),
	})

	codes, err := authService.GenerateCodes(ctx, *count)
	if err != nil {
		log.Fatalf("failed to generate codes: %v", err)
	}
	for _, code := range codes {
		fmt.Println(code)
	}
}
