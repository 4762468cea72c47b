package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/seating-planner/internal/geometry"
	"github.com/iliyamo/seating-planner/internal/model"
)

func newGeometryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Print a table layout with its adjacency graph",
	}
	cmd.AddCommand(newRoundCmd())
	cmd.AddCommand(newRectangleCmd())
	return cmd
}

func newRoundCmd() *cobra.Command {
	var (
		id    string
		seats int
	)
	cmd := &cobra.Command{
		Use:   "round",
		Short: "Build a round table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seats < 1 {
				return fmt.Errorf("--seats must be at least 1")
			}
			t := geometry.CreateRoundTable(geometry.RoundTableOptions{ID: id, SeatCount: seats})
			return writeJSON(cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().StringVar(&id, "id", "t1", "Table id")
	cmd.Flags().IntVar(&seats, "seats", 0, "Number of seats (required)")
	_ = cmd.MarkFlagRequired("seats")
	return cmd
}

func newRectangleCmd() *cobra.Command {
	var (
		id    string
		sides model.RectangleSides
	)
	cmd := &cobra.Command{
		Use:   "rectangle",
		Short: "Build a rectangle table from per-side seat counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sides.Total() < 1 {
				return fmt.Errorf("at least one side needs seats")
			}
			t := geometry.CreateRectangleTable(geometry.RectangleTableOptions{ID: id, Sides: sides})
			return writeJSON(cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().StringVar(&id, "id", "t1", "Table id")
	cmd.Flags().IntVar(&sides.Top, "top", 0, "Seats on the top side")
	cmd.Flags().IntVar(&sides.Right, "right", 0, "Seats on the right side")
	cmd.Flags().IntVar(&sides.Bottom, "bottom", 0, "Seats on the bottom side")
	cmd.Flags().IntVar(&sides.Left, "left", 0, "Seats on the left side")
	return cmd
}
