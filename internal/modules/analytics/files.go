package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/progress-engine/internal/domain"
	domainagg "github.com/yungbote/progress-engine/internal/domain/aggregates"
	"github.com/yungbote/progress-engine/internal/platform/dbctx"
)

type FileStatistics struct {
	TotalViews        int `json:"total_views"`
	TotalDownloads    int `json:"total_downloads"`
	UniqueViewers     int `json:"unique_viewers"`
	UniqueDownloaders int `json:"unique_downloaders"`
}

type UserFileActions struct {
	UserID     uuid.UUID `json:"user_id"`
	UserName   string    `json:"username"`
	Views      int       `json:"views"`
	Downloads  int       `json:"downloads"`
	LastAction time.Time `json:"last_action"`
}

type VideoStats struct {
	TotalMinutes   int     `json:"total_watch_minutes"`
	TotalPoints    int     `json:"total_points_earned"`
	UniqueWatchers int     `json:"unique_watchers"`
	AvgMinutes     float64 `json:"avg_watch_minutes"`
}

type FileAnalytics struct {
	FileID      uuid.UUID         `json:"file_id"`
	LessonID    uuid.UUID         `json:"lesson_id"`
	FileName    string            `json:"file_name"`
	MimeType    string            `json:"mime_type"`
	Statistics  FileStatistics    `json:"statistics"`
	UserActions []UserFileActions `json:"user_actions"`
	Video       *VideoStats       `json:"video_stats"`
}

// GetFileAnalytics reports views and downloads of one attachment. Video
// files also carry watch-time totals.
func (u Usecases) GetFileAnalytics(ctx context.Context, fileID uuid.UUID) (out *FileAnalytics, err error) {
	const op = "Analytics.GetFileAnalytics"
	start := time.Now()
	defer func() { u.observe("file", start, err) }()

	if fileID == uuid.Nil {
		return nil, domainagg.Validation(op, "file_id is required")
	}
	dbc := dbctx.New(ctx)
	keys := []string{"file_id", fileID.String()}

	file, err := u.deps.Repos.LessonFiles.GetByID(dbc, fileID)
	if err != nil {
		return nil, storeErr(op, err, keys...)
	}
	if file == nil {
		return nil, domainagg.NotFound(op, "file").WithKeys(keys...)
	}
	actions, err := u.deps.Repos.FileActions.ListByFile(dbc, fileID)
	if err != nil {
		return nil, storeErr(op, err, keys...)
	}

	out = &FileAnalytics{
		FileID:   file.ID,
		LessonID: file.LessonID,
		FileName: file.OriginalName,
		MimeType: file.MimeType,
	}
	out.Statistics, out.UserActions = fileActivity(actions)

	ids := make([]uuid.UUID, 0, len(out.UserActions))
	for _, a := range out.UserActions {
		ids = append(ids, a.UserID)
	}
	names := u.displayNames(dbc, ids)
	for i := range out.UserActions {
		out.UserActions[i].UserName = nameOr(names, out.UserActions[i].UserID)
	}

	if file.IsVideo() {
		watches, err := u.deps.Repos.VideoWatch.ListByFile(dbc, fileID)
		if err != nil {
			return nil, storeErr(op, err, keys...)
		}
		out.Video = videoStats(watches)
	}
	return out, nil
}

// fileActivity expects actions oldest first; per-user rows keep first
// appearance order.
func fileActivity(actions []*types.FileAction) (FileStatistics, []UserFileActions) {
	var stats FileStatistics
	viewers := map[uuid.UUID]struct{}{}
	downloaders := map[uuid.UUID]struct{}{}
	idx := map[uuid.UUID]int{}
	users := []UserFileActions{}
	for _, a := range actions {
		i, ok := idx[a.UserID]
		if !ok {
			i = len(users)
			idx[a.UserID] = i
			users = append(users, UserFileActions{UserID: a.UserID})
		}
		switch a.Action {
		case types.FileActionView:
			stats.TotalViews++
			viewers[a.UserID] = struct{}{}
			users[i].Views++
		case types.FileActionDownload:
			stats.TotalDownloads++
			downloaders[a.UserID] = struct{}{}
			users[i].Downloads++
		}
		if a.CreatedAt.After(users[i].LastAction) {
			users[i].LastAction = a.CreatedAt
		}
	}
	stats.UniqueViewers = len(viewers)
	stats.UniqueDownloaders = len(downloaders)
	return stats, users
}

func videoStats(watches []*types.VideoWatch) *VideoStats {
	out := &VideoStats{UniqueWatchers: len(watches)}
	for _, w := range watches {
		out.TotalMinutes += w.TotalMinutes
		out.TotalPoints += w.TotalPoints
	}
	out.AvgMinutes = avg(float64(out.TotalMinutes), out.UniqueWatchers)
	return out
}
