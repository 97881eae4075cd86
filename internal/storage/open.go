// Package storage selects the persistence backend named in configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"campus_rentals/internal/domain"
	"campus_rentals/internal/shared"
	"campus_rentals/internal/storage/memory"
	mongostore "campus_rentals/internal/storage/mongo"
	mysqlrepo "campus_rentals/internal/storage/mysql"
)

// Open connects to cfg.StoreBackend and verifies the connection.
func Open(ctx context.Context, cfg shared.Config) (domain.Store, error) {
	switch cfg.StoreBackend {
	case "mysql":
		r, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		log.Info().Msg("database connection ok")
		return r, nil
	case "mongo":
		s, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info().Str("db", cfg.MongoDB).Msg("mongo connection ok")
		return s, nil
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
