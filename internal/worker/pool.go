package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueEmail = "jobs:email"

const (
	JobStockBajo     = "stock_bajo"
	JobOfertaSemanal = "oferta_semanal"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueStockBajo pushes a low-stock alert job to Redis.
func (d *Dispatcher) EnqueueStockBajo(ctx context.Context, productoID uuid.UUID, nombre string, stock, umbral int) error {
	return d.enqueue(ctx, QueueEmail, JobStockBajo, StockBajoPayload{
		ProductoID: productoID.String(),
		Nombre:     nombre,
		Stock:      stock,
		Umbral:     umbral,
	})
}

// EnqueueOfertaSemanal pushes the weekly offer job to Redis.
func (d *Dispatcher) EnqueueOfertaSemanal(ctx context.Context, payload OfertaSemanalPayload) error {
	return d.enqueue(ctx, QueueEmail, JobOfertaSemanal, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// requeue pushes a failed job back with its attempt counter bumped.
func requeue(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	job.Attempts++
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

const maxJobAttempts = 3

// StartWorkerPool launches numWorkers goroutines consuming the email queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, ew *EmailWorker) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, ew)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, ew *EmailWorker) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueEmail).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[0], result[1], ew)
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, queue, raw string, ew *EmailWorker) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	err := ew.Process(ctx, job.Type, job.Payload)
	if err == nil {
		return
	}

	if job.Attempts+1 >= maxJobAttempts {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts+1)
		return
	}
	log.Warn().Str("type", job.Type).Int("attempts", job.Attempts+1).Err(err).
		Msg("job failed, requeueing")
	if rqErr := requeue(ctx, rdb, queue, job); rqErr != nil {
		log.Error().Err(rqErr).Msg("failed to requeue job")
	}
}
