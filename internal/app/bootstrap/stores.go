package bootstrap

import (
	"database/sql"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/ares-whatsapp-router/internal/catalog"
	appconfig "github.com/wolfman30/ares-whatsapp-router/internal/config"
	"github.com/wolfman30/ares-whatsapp-router/internal/interactions"
	"github.com/wolfman30/ares-whatsapp-router/internal/leads"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

// Interaction log backends accepted by INTERACTION_LOG_BACKEND.
const (
	LogBackendPostgres = "postgres"
	LogBackendDynamo   = "dynamodb"
	LogBackendMemory   = "memory"
)

// BuildLeadRepository uses Postgres when a pool is available.
func BuildLeadRepository(pool *pgxpool.Pool, logger *logging.Logger) leads.Repository {
	if logger == nil {
		logger = logging.Default()
	}
	if pool == nil {
		logger.Warn("DATABASE_URL not set; leads are kept in memory")
		return leads.NewInMemoryRepository()
	}
	return leads.NewPostgresRepository(pool)
}

// BuildInteractionStore selects the interaction log backend. The postgres
// backend degrades to memory when no database is configured.
func BuildInteractionStore(cfg *appconfig.Config, db *sql.DB, awsCfg aws.Config, logger *logging.Logger) (interactions.Store, error) {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.InteractionLogBackend {
	case LogBackendPostgres, "":
		if db == nil {
			logger.Warn("DATABASE_URL not set; interaction logs are kept in memory")
			return interactions.NewMemoryStore(), nil
		}
		return interactions.NewSQLStore(db, cfg.InteractionLogTable), nil
	case LogBackendDynamo:
		logger.Info("interaction logs stored in dynamodb", "table", cfg.InteractionLogTable)
		return interactions.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.InteractionLogTable), nil
	case LogBackendMemory:
		return interactions.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown interaction log backend %q", cfg.InteractionLogBackend)
	}
}

// BuildCatalogSource returns the document source named by CATALOG_SOURCE.
func BuildCatalogSource(cfg *appconfig.Config, awsCfg aws.Config) (catalog.Source, error) {
	switch cfg.CatalogSource {
	case "s3", "":
		return catalog.NewS3Source(s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.AWSEndpointOverride != ""
		}), cfg.CatalogBucket, cfg.CatalogPrefix), nil
	case "file":
		return catalog.NewFileSource(cfg.CatalogDir), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown catalog source %q", cfg.CatalogSource)
	}
}
