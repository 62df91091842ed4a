package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pritampani/UnivMarket/internal/cache"
	"github.com/pritampani/UnivMarket/internal/outbox"
	"github.com/pritampani/UnivMarket/internal/remote"
	"github.com/pritampani/UnivMarket/internal/store"
	"github.com/pritampani/UnivMarket/internal/syncer"
)

var skipRefresh bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued mutations and refresh the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := store.Open(cfg.DataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		svc := remote.NewClient(cfg.RemoteBaseURL, cfg.RemoteTimeoutDuration())
		if !svc.Online(ctx) {
			return fmt.Errorf("remote service at %s is unreachable", cfg.RemoteBaseURL)
		}

		reconciler := syncer.NewForService(outbox.NewQueue(s), svc)

		results := reconciler.RunAll(ctx)
		for _, kind := range reconciler.Kinds() {
			res := results[kind]
			if res == nil {
				continue
			}
			line := fmt.Sprintf("%-10s attempted %d, replayed %d, failed %d",
				kind, res.Attempted, res.Replayed, res.Failed)
			if res.Failed > 0 {
				color.Yellow(line)
			} else {
				color.Green(line)
			}
		}

		if skipRefresh {
			return nil
		}
		return refreshCache(ctx, s, svc)
	},
}

func refreshCache(ctx context.Context, s *store.Store, svc remote.Service) error {
	m := cache.NewManager(s)

	products, err := svc.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}
	if err := m.CacheList(ctx, store.CachedProducts, products); err != nil {
		return err
	}

	categories, err := svc.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("fetch categories: %w", err)
	}
	if err := m.CacheList(ctx, store.CachedCategories, categories); err != nil {
		return err
	}

	color.Green("cached %d products, %d categories", len(products), len(categories))
	return nil
}

func init() {
	syncCmd.Flags().BoolVar(&skipRefresh, "no-refresh", false, "skip refreshing cached products and categories")
	rootCmd.AddCommand(syncCmd)
}
