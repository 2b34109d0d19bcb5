package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thebtf/resonance/pkg/models"
)

func parseKind(raw string, allowEmpty bool) (models.ScoreKind, error) {
	kind := models.ScoreKind(raw)
	if (raw == "" && allowEmpty) || kind.Valid() {
		return kind, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", errUsage, raw)
}

func (c *cli) recentCmd() *cobra.Command {
	var (
		kind  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the newest ledger records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind, true)
			if err != nil {
				return err
			}
			if limit < 1 || limit > 500 {
				return fmt.Errorf("%w: limit %d outside [1, 500]", errUsage, limit)
			}

			records, err := c.newClient().RecentScores(cmd.Context(), k, limit)
			if err != nil {
				return fmt.Errorf("recent scores: %w", err)
			}
			if records == nil {
				records = []*models.ScoreRecord{}
			}
			return c.writeJSON(records)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only records of this kind")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum records")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate ledger scores per kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind, true)
			if err != nil {
				return err
			}
			kinds := models.ScoreKinds
			if k != "" {
				kinds = []models.ScoreKind{k}
			}

			cl := c.newClient()
			stats := make([]*models.ScoreStats, 0, len(kinds))
			for _, kk := range kinds {
				s, err := cl.ScoreStats(cmd.Context(), kk)
				if err != nil {
					return fmt.Errorf("%s stats: %w", kk, err)
				}
				stats = append(stats, s)
			}
			return c.writeJSON(stats)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "one kind instead of all")
	return cmd
}
