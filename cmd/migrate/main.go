package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"io.winapps.depttimeline/internal/config"
	firebaseutil "io.winapps.depttimeline/internal/firebase"
	"io.winapps.depttimeline/internal/logging"
	"io.winapps.depttimeline/internal/migrate"
	"io.winapps.depttimeline/internal/store"
)

var (
	credentialsPath string
	projectID       string
	collection      string
	batchSize       int
	dryRun          bool
	logLevel        string

	logger *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "migrate <export.json>",
	Short: "Copy a local timeline export into Firestore",
	Long: `Reads the JSON saved under the local storage key dept_timeline_data
(a bare array, an object wrapping it under dept_timeline_data or entries,
or the array double-encoded as a string) and writes every entry into the
Firestore entries collection in batches. Entries keep their id as the
document key when they have one.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(logLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.Flags().StringVar(&credentialsPath, "credentials", "", "service account JSON file")
	rootCmd.Flags().StringVar(&projectID, "project", "", "Firebase project id (defaults to the one in the credentials)")
	rootCmd.Flags().StringVar(&collection, "collection", store.EntriesCollection, "target Firestore collection")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", migrate.DefaultBatchSize, "writes per batch, at most 500")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the export and report what would be written")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
	_ = rootCmd.MarkFlagRequired("credentials")
}

func run(ctx context.Context, dataPath string) error {
	if _, err := os.Stat(credentialsPath); err != nil {
		return fmt.Errorf("service account file not found: %w", err)
	}
	raw, err := os.ReadFile(dataPath)
	if err != nil {
		return fmt.Errorf("data file not found: %w", err)
	}

	records, err := migrate.ParseExport(raw)
	if err != nil {
		return err
	}
	logger.Infow("Found entries", "count", len(records), "collection", collection)
	if dryRun {
		return nil
	}

	app, err := firebaseutil.InitFirebase(ctx, config.FirebaseConfig{
		ProjectID:          projectID,
		ServiceAccountPath: credentialsPath,
	})
	if err != nil {
		return err
	}
	client, err := firebaseutil.GetFirestoreClient(ctx, app)
	if err != nil {
		return err
	}
	defer client.Close()

	written, err := migrate.Migrate(ctx, migrate.NewFirestoreWriter(client, collection), records, batchSize,
		func(done, total int) {
			logger.Infow("Uploaded batch", "uploaded", done, "total", total)
		})
	if err != nil {
		return fmt.Errorf("migration failed after %d entries: %w", written, err)
	}
	logger.Infow("Migration complete", "uploaded", written)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
