package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/progress-engine/internal/app"
	"github.com/yungbote/progress-engine/internal/platform/authtoken"
	"github.com/yungbote/progress-engine/internal/platform/envutil"
)

var deleteLessonYes bool

var deleteLessonCmd = &cobra.Command{
	Use:   "delete-lesson <lesson-id>",
	Short: "Delete a lesson and every record that belongs to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lessonID, err := parseID("lesson-id", args[0])
		if err != nil {
			return err
		}
		if !deleteLessonYes {
			return fmt.Errorf("refusing to delete lesson %s without --yes", lessonID)
		}
		return withServices(cmd, func(ctx context.Context, s app.Services) (any, error) {
			counts, err := s.Progress.DeleteLesson(ctx, lessonID)
			return map[string]any{"deleted": counts}, err
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset <user-id> <lesson-id>",
	Short: "Erase one student's activity and progress for a lesson",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID("user-id", args[0])
		if err != nil {
			return err
		}
		lessonID, err := parseID("lesson-id", args[1])
		if err != nil {
			return err
		}
		return withServices(cmd, func(ctx context.Context, s app.Services) (any, error) {
			counts, err := s.Progress.ResetUserLesson(ctx, userID, lessonID)
			return map[string]any{"deleted": counts}, err
		})
	},
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute <user-id> <lesson-id>",
	Short: "Rebuild the progress record from stored activity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID("user-id", args[0])
		if err != nil {
			return err
		}
		lessonID, err := parseID("lesson-id", args[1])
		if err != nil {
			return err
		}
		return withServices(cmd, func(ctx context.Context, s app.Services) (any, error) {
			return s.Progress.RecomputeProgress(ctx, userID, lessonID)
		})
	},
}

var (
	tokenAdmin bool
	tokenTTL   time.Duration
)

// token mints a bearer token for local testing against the API.
var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a bearer token signed with JWT_SECRET_KEY",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID("user-id", args[0])
		if err != nil {
			return err
		}
		secret := envutil.String("JWT_SECRET_KEY", "")
		if secret == "" {
			return fmt.Errorf("JWT_SECRET_KEY is not set")
		}
		tok, err := authtoken.Issue(secret, userID, tokenAdmin, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	deleteLessonCmd.Flags().BoolVar(&deleteLessonYes, "yes", false, "confirm the deletion")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant the admin role")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	rootCmd.AddCommand(deleteLessonCmd, resetCmd, recomputeCmd, tokenCmd)
}
