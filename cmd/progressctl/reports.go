package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yungbote/progress-engine/internal/app"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Print the admin overview",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, s app.Services) (any, error) {
			return s.Analytics.GetOverview(ctx)
		})
	},
}

var lessonCmd = &cobra.Command{
	Use:   "lesson <lesson-id>",
	Short: "Print analytics for one lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lessonID, err := parseID("lesson-id", args[0])
		if err != nil {
			return err
		}
		return withServices(cmd, func(ctx context.Context, s app.Services) (any, error) {
			return s.Analytics.GetLessonAnalytics(ctx, lessonID)
		})
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard <user-id>",
	Short: "Print a student's dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID("user-id", args[0])
		if err != nil {
			return err
		}
		return withServices(cmd, func(ctx context.Context, s app.Services) (any, error) {
			return s.Analytics.GetStudentDashboard(ctx, userID)
		})
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd, lessonCmd, dashboardCmd)
}
