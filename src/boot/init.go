package boot

import (
	"context"
	"log"
	"taskflow/src/config"
	"taskflow/src/db"
	"taskflow/src/lib"
	"taskflow/src/models"
	"taskflow/src/services"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(models.All()...)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitStore picks the persistence backend from DATABASE_DRIVER.
func InitStore() services.Store {
	driver := config.Load().Database.Driver
	if driver == "memory" {
		log.Println("[boot] Using in-memory store")
		return db.NewMemoryStore()
	}
	return db.NewStore(InitDb())
}

// InitCache returns nil when Redis is not configured so the services run uncached.
func InitCache() services.Cache {
	rdb := lib.GetRedisClient()
	if rdb == nil {
		log.Println("[boot] REDIS_HOST not set, caching disabled")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := lib.PingRedis(ctx); err != nil {
		log.Printf("[boot] Redis unreachable, caching disabled: %s\n", err.Error())
		return nil
	}
	return lib.NewRedisCache(rdb)
}

func InitServices() *services.Services {
	cfg := config.Load()
	return services.New(InitStore(), InitCache(), services.Options{
		RoleCacheTTL:   cfg.RoleCacheTTL,
		StatusCacheTTL: cfg.StatusCacheTTL,
	})
}

func InitScheduler(recalc lib.Recalculator) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if _, err := lib.ScheduleCompletionRecalculation(recalc, config.Load().RecalcInterval); err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
		return
	}
}
