package jobs

import (
	"log"
	"sync"
	"time"

	"kasuwa.GO/config"
	"kasuwa.GO/cron"
	inventoryService "kasuwa.GO/service/inventory"
)

// Jobs self-register here instead of config.CronJobs to keep config free of
// service imports.

var (
	serviceInstance *inventoryService.InventoryService
	serviceOnce     sync.Once
	serviceErr      error
)

func getService() (*inventoryService.InventoryService, error) {
	serviceOnce.Do(func() {
		db, err := config.NewDB()
		if err != nil {
			serviceErr = err
			return
		}
		serviceInstance = inventoryService.NewInventoryService(db, config.RedisClient, nil)
	})
	return serviceInstance, serviceErr
}

func init() {
	cron.Register("reservationsweep", config.SweepSchedule(), func(args ...string) {
		svc, err := getService()
		if err != nil {
			log.Printf("[cron] reservationsweep: db: %v", err)
			return
		}
		reaped, err := svc.ExpireReservations(time.Now().UTC())
		if err != nil {
			log.Printf("[cron] reservationsweep: %v", err)
			return
		}
		if reaped > 0 {
			log.Printf("[cron] reservationsweep: released %d expired reservations", reaped)
		}
	})
}
