package daemon

import (
	"time"

	"github.com/extrarr/extrarr/pkg/extrasync"
)

// Built-in maintenance task definitions.

func refreshTask() extrasync.ScheduledTask {
	return extrasync.ScheduledTask{
		Id:              "refresh-extras",
		Name:            "Refresh Extras",
		IntervalSeconds: int64((6 * time.Hour).Seconds()),
	}
}

func pruneTask() extrasync.ScheduledTask {
	return extrasync.ScheduledTask{
		Id:       "prune-history",
		Name:     "Prune Job History",
		CronExpr: "0 3 * * *",
	}
}

// SeedCatalog returns a small demonstration catalog so a fresh daemon has
// something to list and search.
func SeedCatalog() []extrasync.ExtraRecord {
	return []extrasync.ExtraRecord{
		{
			MediaType:  "movie",
			MediaId:    1,
			ExtraType:  "trailer",
			ExtraTitle: "Official Trailer",
			VideoId:    "seed-trailer-1",
			Status:     extrasync.ExtraNone,
		},
		{
			MediaType:  "movie",
			MediaId:    1,
			ExtraType:  "featurette",
			ExtraTitle: "Behind the Scenes",
			VideoId:    "seed-featurette-1",
			Status:     extrasync.ExtraNone,
		},
		{
			MediaType:  "movie",
			MediaId:    1,
			ExtraType:  "trailer",
			ExtraTitle: "Teaser",
			VideoId:    "seed-teaser-1",
			Status:     extrasync.ExtraRejected,
			Reason:     "wrong language",
			BannedAt:   time.Now().Add(-48 * time.Hour),
		},
	}
}
