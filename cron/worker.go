package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hazqeelknight/events/config"
	"github.com/hazqeelknight/events/services/availability"
	"github.com/hazqeelknight/events/services/tasks"

	"github.com/hibiken/asynq"
)

// InitInvalidationWorker runs the async worker in background. It consumes the
// cache-invalidation tasks the management layer enqueues on every write to an
// organizer's rules, overrides, blocks or buffer settings.
func InitInvalidationWorker(engine availability.AvailabilityEngine) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeAvailabilityInvalidate, handleInvalidateTask(engine))

	// Start async worker with retry logic.
	go func() {
		log.Println("[InvalidationWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[InvalidationWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[InvalidationWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleInvalidateTask(engine availability.AvailabilityEngine) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.InvalidatePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[InvalidationWorker] invalid payload: %v", err)
			return err
		}

		log.Printf("[InvalidationWorker] invalidating availability cache for organizer %s (%s)", p.OrganizerID, p.Reason)
		return engine.Invalidate(ctx, p.OrganizerID)
	}
}
