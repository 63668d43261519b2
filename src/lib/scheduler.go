package lib

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

var scheduler gocron.Scheduler

func NewScheduler(s gocron.Scheduler) {
	scheduler = s
}

func GetScheduler() (gocron.Scheduler, error) {
	if scheduler != nil {
		return scheduler, nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("Error initializing Scheduler: %s\n", err.Error())
		return nil, err
	}
	scheduler = sched
	return sched, nil
}

func CreateCronJob(handler any, duration time.Duration, args ...any) (*string, error) {
	sched, err := GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return nil, err
	}
	j, err := sched.NewJob(
		gocron.DurationJob(duration),
		gocron.NewTask(handler, args...),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}
	id := j.ID().String()
	return &id, nil
}

// Recalculator refreshes every active project's completion percentage.
type Recalculator interface {
	RecalculateAll(ctx context.Context) (int, error)
}

// ScheduleCompletionRecalculation registers the periodic sweep that repairs
// completion percentages drifting from their tasks.
func ScheduleCompletionRecalculation(r Recalculator, every time.Duration) (*string, error) {
	id, err := CreateCronJob(func() {
		n, err := r.RecalculateAll(context.Background())
		if err != nil {
			log.Printf("[scheduler] Completion recalculation failed after %d projects: %s\n", n, err.Error())
			return
		}
		log.Printf("[scheduler] Recalculated completion for %d projects\n", n)
	}, every)
	if err != nil {
		log.Printf("[scheduler] Error creating recalculation job: %s\n", err.Error())
		return nil, err
	}
	log.Printf("[scheduler] Recalculation job %s runs every %s\n", *id, every)
	return id, nil
}
