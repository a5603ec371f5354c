package config

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fieldlens/fieldlens/pkg/domain/interfaces"
	domainConfig "github.com/fieldlens/fieldlens/pkg/domain/model/config"
	"github.com/fieldlens/fieldlens/pkg/repository/firestore"
	"github.com/fieldlens/fieldlens/pkg/repository/memory"
	"github.com/fieldlens/fieldlens/pkg/utils/logging"
)

// Registry holds CLI flags for the name registry backend configuration
type Registry struct {
	backend          string
	projectID        string
	databaseID       string
	collectionPrefix string
}

// Flags returns CLI flags for registry configuration
func (r *Registry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "registry-backend",
			Usage:       "Name registry backend (firestore or memory)",
			Value:       "firestore",
			Sources:     cli.EnvVars("FIELDLENS_REGISTRY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("FIELDLENS_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("FIELDLENS_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for the registry collection name",
			Sources:     cli.EnvVars("FIELDLENS_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
	}
}

// Configure initializes the registry backend. The memory backend is
// pre-populated with the schema's dev seeds. The returned closer is nil
// for backends without a connection to release.
func (r *Registry) Configure(ctx context.Context, schema *domainConfig.Schema) (interfaces.NameRegistry, io.Closer, error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		var opts []firestore.Option
		if r.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.collectionPrefix))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize firestore registry")
		}
		logging.Default().Info("Using Firestore name registry",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, repo, nil

	case "memory":
		logging.Default().Info("Using in-memory name registry (development mode)")
		return memory.NewFromSeeds(schema.Entities), nil, nil

	default:
		return nil, nil, goerr.New("invalid registry backend", goerr.V("backend", r.backend))
	}
}
