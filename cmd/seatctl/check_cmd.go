package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/seating-planner/internal/geometry"
	"github.com/iliyamo/seating-planner/internal/model"
	"github.com/iliyamo/seating-planner/internal/violation"
)

type checkOutput struct {
	SessionID  string                `json:"session_id"`
	Tables     int                   `json:"tables"`
	Counts     model.ViolationCounts `json:"counts"`
	Violations []model.Violation     `json:"violations"`
}

func newCheckCmd() *cobra.Command {
	var (
		rebuild bool
		strict  bool
	)
	cmd := &cobra.Command{
		Use:   "check <plan.json>",
		Short: "Detect proximity violations in an exported session plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read plan: %w", err)
			}
			var plan model.SessionPlan
			if err := json.Unmarshal(raw, &plan); err != nil {
				return fmt.Errorf("decode plan %s: %w", args[0], err)
			}
			if rebuild {
				for i := range plan.Tables {
					geometry.RebuildAdjacency(&plan.Tables[i])
				}
			}
			found := violation.DetectProximityViolations(plan.Tables, plan.Rules, plan.Lookup())
			out := checkOutput{
				SessionID:  plan.SessionID,
				Tables:     len(plan.Tables),
				Counts:     violation.Count(found),
				Violations: found,
			}
			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if strict && out.Counts.Total > 0 {
				return fmt.Errorf("%d violation(s) found", out.Counts.Total)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&rebuild, "rebuild-adjacency", true, "Re-derive adjacency from table shape before checking")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any violation is found")
	return cmd
}
