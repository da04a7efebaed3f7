package jobs

import (
	"log"

	"kasuwa.GO/cron"
)

func init() {
	cron.Register("alertrecheck", "@every 10m", func(args ...string) {
		svc, err := getService()
		if err != nil {
			log.Printf("[cron] alertrecheck: db: %v", err)
			return
		}
		fired, err := svc.RecheckAlerts()
		if err != nil {
			log.Printf("[cron] alertrecheck: %v", err)
			return
		}
		if fired > 0 {
			log.Printf("[cron] alertrecheck: regenerated %d alerts", fired)
		}
	})
}
