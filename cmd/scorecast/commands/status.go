package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantlab-io/scorecast/internal/artifact"
	"github.com/quantlab-io/scorecast/internal/contracts"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show model and connectivity status",
	Long: `Prints, for each horizon, whether a production model exists, when
it was trained and its held-out evaluation metrics, plus database and
redis connectivity.

Example:
  scorecast status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	fmt.Printf("artifacts: %s\n\n", app.cfg.Artifacts.Dir)
	for _, horizon := range contracts.Horizons() {
		art, err := app.store.Load(horizon, artifact.SlotProduction)
		if err != nil {
			if errors.Is(err, contracts.ErrModelNotTrained) {
				fmt.Printf("%-4s  no production model\n", horizon)
			} else {
				fmt.Printf("%-4s  unreadable: %v\n", horizon, err)
			}
			continue
		}

		fmt.Printf("%-4s  trained %s  accuracy %.4f  weighted F1 %.4f  features %d\n",
			horizon,
			art.TrainedAt.Format("2006-01-02 15:04"),
			art.Metrics.Accuracy,
			art.Metrics.F1Weighted,
			len(art.FeatureNames),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fmt.Println()
	if db, err := app.database(); err != nil {
		fmt.Printf("database: unavailable (%v)\n", err)
	} else if err := db.Ping(ctx); err != nil {
		fmt.Printf("database: ping failed (%v)\n", err)
	} else {
		fmt.Println("database: ok")
	}

	if cache := app.redisCache(); cache != nil {
		fmt.Println("redis: ok")
	} else {
		fmt.Println("redis: disabled")
	}
	return nil
}
