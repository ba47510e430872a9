package scoring

type Level struct {
	Number          int    `json:"level"`
	Name            string `json:"level_name"`
	NextLevelPoints int    `json:"next_level_points"`
	ProgressToNext  int    `json:"progress_to_next_level"`
}

type levelTier struct {
	min  int
	next int
	name string
}

// Ordered by threshold, ascending.
var levelTiers = []levelTier{
	{min: 0, next: 100, name: "Новичок"},
	{min: 100, next: 250, name: "Ученик"},
	{min: 250, next: 500, name: "Продвинутый"},
	{min: 500, next: 1000, name: "Эксперт"},
	{min: 1000, next: 2000, name: "Мастер"},
}

// LevelFor maps a point total onto the five-tier level table. Progress is the
// share of the next target already earned, capped at 100.
func LevelFor(points int) Level {
	if points < 0 {
		points = 0
	}
	idx := 0
	for i, t := range levelTiers {
		if points >= t.min {
			idx = i
		}
	}
	tier := levelTiers[idx]
	progress := points * 100 / tier.next
	if progress > 100 {
		progress = 100
	}
	return Level{
		Number:          idx + 1,
		Name:            tier.name,
		NextLevelPoints: tier.next,
		ProgressToNext:  progress,
	}
}
