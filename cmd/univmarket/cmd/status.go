package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pritampani/UnivMarket/internal/outbox"
	"github.com/pritampani/UnivMarket/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show queued mutations and cache contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := store.Open(cfg.DataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := outbox.NewQueue(s).Stats(ctx)
		if err != nil {
			return err
		}

		fmt.Println("pending mutations:")
		total := 0
		for kind, n := range stats {
			total += n
			fmt.Printf("  %-10s %d\n", kind, n)
		}
		if total == 0 {
			color.Green("  queue is empty")
		} else {
			color.Yellow("  %d waiting for replay", total)
		}

		fmt.Println("cache:")
		for _, p := range []store.Partition{store.CachedProducts, store.CachedCategories} {
			n, err := s.Count(ctx, p)
			if err != nil {
				return err
			}
			fmt.Printf("  %-20s %d\n", p, n)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
