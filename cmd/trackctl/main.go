// trackctl administers the change-tracking log: it applies schema
// migrations, registers vocabulary tracking contexts and inspects or exports
// asset histories.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/termgraph/changetrack/internal/auth"
	"github.com/termgraph/changetrack/internal/changelog"
	"github.com/termgraph/changetrack/internal/config"
	"github.com/termgraph/changetrack/internal/db"
	"github.com/termgraph/changetrack/internal/diff"
	"github.com/termgraph/changetrack/internal/domain"
	"github.com/termgraph/changetrack/internal/export"
	"github.com/termgraph/changetrack/internal/graph"
	"github.com/termgraph/changetrack/internal/logging"
	"github.com/termgraph/changetrack/internal/metamodel"
	"github.com/termgraph/changetrack/internal/tracker"
	"github.com/termgraph/changetrack/internal/workspace"
)

// vocabularyType is the descriptor key trackctl registers for assets flagged
// as collections on the command line.
const vocabularyType = "vocabulary"

var (
	configPath string
	actorIRI   string
	cfg        config.Config
	logger     *logrus.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "trackctl",
		Short:         "Administer the change-tracking log",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			logger = logging.New(cfg.Logging)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")
	root.PersistentFlags().StringVar(&actorIRI, "actor", "", "IRI of the acting user, required for commands that write records")

	root.AddCommand(migrateCmd(), historyCmd(), exportCmd(), registerContextCmd(), recordDeleteCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// runtime bundles the wired stores for commands that touch the database.
type runtime struct {
	conn     *db.Connection
	records  *changelog.Store
	contexts workspace.ContextRegistry
	types    *metamodel.Registry
}

func newRuntime(ctx context.Context) (*runtime, func(), error) {
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	var contexts workspace.ContextRegistry = workspace.NewPostgresRegistry(conn.Pool)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		contexts = workspace.NewCachedRegistry(contexts, redisClient, cfg.Redis.TTL)
	}

	types := metamodel.NewRegistry()
	if err := types.Register(metamodel.TypeDescriptor{Type: vocabularyType, Collection: true}); err != nil {
		conn.Close()
		return nil, nil, err
	}

	resolver := changelog.NewContextResolver(types, contexts)
	records := changelog.NewStore(graph.NewPostgresStore(conn.Pool), resolver, logger)

	cleanup := func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		conn.Close()
	}
	return &runtime{conn: conn, records: records, contexts: contexts, types: types}, cleanup, nil
}

func assetInstance(iri string, collection bool) *domain.Instance {
	entityType := ""
	if collection {
		entityType = vocabularyType
	}
	return domain.NewInstance(domain.URI(iri), entityType)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.RunMigrations(cfg.Database); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var collection bool
	cmd := &cobra.Command{
		Use:   "history <asset-iri>",
		Short: "Print the change history of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			records, err := rt.records.FindAll(cmd.Context(), assetInstance(args[0], collection))
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no history")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "RECORDED\tKIND\tAUTHOR\tATTRIBUTE")
			for _, record := range records {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
					record.Timestamp.UTC().Format("2006-01-02 15:04:05"),
					record.Type,
					record.Author,
					record.ChangedAttribute,
				)
			}
			return writer.Flush()
		},
	}
	cmd.Flags().BoolVar(&collection, "collection", false, "treat the asset as a top-level collection")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		collection bool
		formatName string
		outPath    string
	)
	cmd := &cobra.Command{
		Use:   "export <asset-iri>",
		Short: "Export the change history of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			rt, cleanup, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			out := os.Stdout
			if outPath != "" {
				file, createErr := os.Create(outPath)
				if createErr != nil {
					return fmt.Errorf("failed to create output file: %w", createErr)
				}
				defer file.Close()
				out = file
			}

			service := export.NewService(rt.records)
			if err := service.ExportHistory(cmd.Context(), assetInstance(args[0], collection), format, out); err != nil {
				return err
			}
			if outPath != "" {
				logger.WithField("file", outPath).Info("history exported")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&collection, "collection", false, "treat the asset as a top-level collection")
	cmd.Flags().StringVar(&formatName, "format", "csv", "output format: csv or xlsx")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}

func recordDeleteCmd() *cobra.Command {
	var (
		collection bool
		labelText  string
		vocabulary string
	)
	cmd := &cobra.Command{
		Use:   "record-delete <asset-iri>",
		Short: "Record the deletion of an asset removed outside the application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if actorIRI != "" {
				ctx = auth.ContextWithActor(ctx, domain.URI(actorIRI))
			}
			author, ok := auth.ActorFromContext(ctx)
			if !ok {
				return fmt.Errorf("--actor is required to record a deletion")
			}

			rt, cleanup, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			events := tracker.New(rt.records, diff.NewCalculator(rt.types), logger)
			err = events.RecordDeleteEvent(ctx, author, assetInstance(args[0], collection),
				domain.PlainString(labelText), domain.URI(vocabulary))
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"entity": args[0],
				"author": author,
			}).Info("deletion recorded")
			return nil
		},
	}
	cmd.Flags().BoolVar(&collection, "collection", false, "treat the asset as a top-level collection")
	cmd.Flags().StringVar(&labelText, "label", "", "display label of the deleted asset")
	cmd.Flags().StringVar(&vocabulary, "vocabulary", "", "IRI of the vocabulary the asset belonged to")
	return cmd
}

func registerContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register-context <vocabulary-iri> <context-iri>",
		Short: "Register the tracking context of a vocabulary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := rt.contexts.Register(cmd.Context(), domain.URI(args[0]), args[1]); err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"vocabulary": args[0],
				"context":    args[1],
			}).Info("tracking context registered")
			return nil
		},
	}
}
