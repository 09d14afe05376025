// Command seed loads a small demo catalog through the public entity
// operations and prints what the relationship queries return.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"magazine-catalog/internal/config"
	"magazine-catalog/internal/domains/catalog"
	"magazine-catalog/internal/infrastructure/database"
	"magazine-catalog/pkg/jwt"
	"magazine-catalog/pkg/logger"
)

type options struct {
	token   bool
	subject string
	schema  bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.token, "token", false, "print an editor access token and exit")
	flag.StringVar(&opts.subject, "subject", "seed", "subject of the token printed by -token")
	flag.BoolVar(&opts.schema, "schema", false, "create missing catalog tables before seeding")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(opts); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func run(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)

	if opts.token {
		tok, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL).GenerateAccessToken(opts.subject, jwt.RoleEditor)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
		fmt.Println(tok)
		return nil
	}

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	gw, err := database.Open(ctx, dbConfig, logger.With("gateway"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer gw.Close()

	if opts.schema {
		if err := gw.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	return seed(ctx, catalog.NewSession(gw, catalog.WithLogger(logger.With("catalog"))))
}

func seed(ctx context.Context, s *catalog.Session) error {
	mag, err := s.CreateMagazine(ctx, "Tech Weekly", "Tech")
	if err != nil {
		return fmt.Errorf("create magazine: %w", err)
	}
	asha, err := s.CreateAuthor(ctx, "Asha")
	if err != nil {
		return fmt.Errorf("create author: %w", err)
	}
	for _, title := range []string{"Intro to Systems", "Deep Dive One", "Deep Dive Two"} {
		if _, err := s.CreateArticle(ctx, title, "Notes on "+strings.ToLower(title)+".", asha, mag); err != nil {
			return fmt.Errorf("create article %q: %w", title, err)
		}
	}

	contributing, err := mag.ContributingAuthors(ctx)
	if err != nil {
		return err
	}
	titles, ok, err := mag.ArticleTitles(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("magazine %d %q (%s)\n", mag.ID(), mag.Name(), mag.Category())
	for _, a := range contributing {
		fmt.Printf("  contributing author: %d %s\n", a.ID(), a.Name())
	}
	if ok {
		fmt.Printf("  titles: %s\n", strings.Join(titles, ", "))
	}
	return nil
}
