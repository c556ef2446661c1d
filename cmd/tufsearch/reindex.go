package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex <levels|passes> [id...]",
	Short: "Rebuild index documents from the store",
	Long: `Rebuilds the search index for one entity family. Without ids the
whole family is walked and the stored mapping version is refreshed.
With ids only those documents are re-projected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReindex,
}

func runReindex(cmd *cobra.Command, args []string) error {
	family := domain.Family(args[0])
	if family != domain.FamilyLevel && family != domain.FamilyPass {
		return fmt.Errorf("unknown family %q", args[0])
	}

	ids := make([]int64, 0, len(args)-1)
	for _, arg := range args[1:] {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", arg, err)
		}
		ids = append(ids, id)
	}

	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.reindex.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if err := a.reindex.Reindex(ctx, family, ids...); err != nil {
		return fmt.Errorf("reindex: %w", err)
	}

	cmd.Printf("reindex of %s complete\n", family)
	return nil
}
