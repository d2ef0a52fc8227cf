package jobs

import (
	"log"

	"github.com/olusegunak/school_cbt/database"
	"github.com/olusegunak/school_cbt/services"
)

// BackfillSessionScores is the scheduled maintenance entry point: it repairs
// completed sessions that are missing cached scores. It also runs
// opportunistically before report generation, and both paths are safe to
// overlap with live submissions.
func BackfillSessionScores() {
	log.Println("Running job: BackfillSessionScores...")

	updated, err := services.NewBackfillService(database.DB).BackfillMissingScores()
	if err != nil {
		log.Printf("Error backfilling session scores: %v", err)
		return
	}

	if updated == 0 {
		log.Println("No sessions needed a score backfill.")
		return
	}
	log.Printf("Backfilled %d session(s).", updated)
}
