// Command seed loads a deterministic movie catalog into the cinema guru
// database and can print a development access token.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bcart01v/atlas-cinema-guru/internal/auth"
	"github.com/bcart01v/atlas-cinema-guru/internal/config"
	"github.com/bcart01v/atlas-cinema-guru/internal/repository/postgres"
	"github.com/bcart01v/atlas-cinema-guru/migrations"
	pkgconfig "github.com/bcart01v/atlas-cinema-guru/pkg/config"
	"github.com/bcart01v/atlas-cinema-guru/pkg/database"
	"github.com/bcart01v/atlas-cinema-guru/pkg/logger"
	"github.com/bcart01v/atlas-cinema-guru/pkg/validator"
)

// seedConfig is read from SEED_* variables; database settings come from the
// service configuration.
type seedConfig struct {
	Count      int           `env:"COUNT" envDefault:"120" validate:"min=1,max=100000"`
	RandSeed   int64         `env:"RAND_SEED" envDefault:"42"`
	FirstYear  int           `env:"FIRST_YEAR" envDefault:"1950" validate:"min=1888"`
	LastYear   int           `env:"LAST_YEAR" envDefault:"2024" validate:"gtefield=FirstYear"`
	TokenEmail string        `env:"TOKEN_EMAIL"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	var sc seedConfig
	if err := pkgconfig.LoadWithPrefix(&sc, "SEED_"); err != nil {
		return fmt.Errorf("load seed config: %w", err)
	}
	if err := validator.Validate(sc); err != nil {
		return fmt.Errorf("validate seed config: %w", err)
	}

	log := logger.New("cinema-guru-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	movies := generateMovies(sc.Count, sc.RandSeed, sc.FirstYear, sc.LastYear)
	n, err := postgres.NewMovieRepository(pool).Upsert(ctx, movies)
	if err != nil {
		return fmt.Errorf("seed movies: %w", err)
	}
	log.Info("movies seeded", slog.Int("count", n), slog.Int64("rand_seed", sc.RandSeed))

	if sc.TokenEmail != "" {
		token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer).GenerateAccessToken(sc.TokenEmail, sc.TokenTTL)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Println(token)
	}
	return nil
}
