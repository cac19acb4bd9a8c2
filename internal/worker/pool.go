package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ndmanh/marketplace-be/internal/webhook"
	"github.com/ndmanh/marketplace-be/internal/worker/domain"
)

// spawnWorkerPool spawns N delivery goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each delivery goroutine
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Info("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			w.logger.Info("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg, ok := <-w.jobsChan:
			if !ok {
				return
			}

			jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
			err := w.sender.Deliver(jobCtx, msg.Job)
			cancel()

			if err != nil {
				w.logger.Error("Delivery attempt failed",
					slog.String("worker_name", workerName),
					slog.String("buyer_id", msg.Job.BuyerID),
					slog.String("deal_id", msg.Job.DealID),
					slog.Int("attempt", msg.Job.Attempt),
					slog.Any("error", err),
				)
				w.handleFailedAttempt(ctx, msg)
				continue
			}

			if ackErr := w.ack(msg.DeliveryTag); ackErr != nil {
				w.logger.Error("Failed to ACK message",
					slog.String("worker_name", workerName),
					slog.Any("error", ackErr),
				)
			}
		}
	}
}

// handleFailedAttempt applies the job's retry policy. While the attempt
// budget lasts, the job is republished to the retry queue with the
// computed backoff delay and the original delivery is ACKed; once the
// budget is spent the job is dropped.
func (w *Worker) handleFailedAttempt(ctx context.Context, msg *domain.JobMessage) {
	next, delay, retry := nextAttempt(msg.Job)
	if !retry {
		w.logger.Warn("Retry attempts exhausted, dropping job",
			slog.String("buyer_id", msg.Job.BuyerID),
			slog.String("deal_id", msg.Job.DealID),
			slog.Int("attempts", msg.Job.Attempt),
		)
		if err := w.ack(msg.DeliveryTag); err != nil {
			w.logger.Error("Failed to ACK exhausted job", slog.Any("error", err))
		}
		return
	}

	body, err := json.Marshal(next)
	if err != nil {
		// Cannot happen for a job we just decoded; drop rather than loop
		w.logger.Error("Failed to marshal retry job", slog.Any("error", err))
		if ackErr := w.ack(msg.DeliveryTag); ackErr != nil {
			w.logger.Error("Failed to ACK unmarshalable job", slog.Any("error", ackErr))
		}
		return
	}

	if err := w.rabbitClient.PublishDelayed(ctx, body, "application/json", delay); err != nil {
		w.logger.Error("Failed to schedule retry, requeueing",
			slog.Any("error", err),
		)
		// Fall back to an immediate requeue so the attempt is not lost
		if nackErr := w.nack(msg.DeliveryTag, true); nackErr != nil {
			w.logger.Error("Failed to NACK message", slog.Any("error", nackErr))
		}
		return
	}

	w.logger.Info("Delivery attempt rescheduled",
		slog.String("buyer_id", msg.Job.BuyerID),
		slog.String("deal_id", msg.Job.DealID),
		slog.Int("next_attempt", next.Attempt),
		slog.Duration("delay", delay),
	)

	if err := w.ack(msg.DeliveryTag); err != nil {
		w.logger.Error("Failed to ACK rescheduled job", slog.Any("error", err))
	}
}

// nextAttempt returns the job for the following attempt and the backoff
// delay to apply, or retry=false when the attempt budget is spent
func nextAttempt(job *webhook.Job) (next *webhook.Job, delay time.Duration, retry bool) {
	if job.Attempt >= job.Retry.Attempts {
		return nil, 0, false
	}

	copied := *job
	copied.Attempt = job.Attempt + 1

	return &copied, job.Retry.NextDelay(job.Attempt), true
}

func (w *Worker) ack(deliveryTag uint64) error {
	channel := w.rabbitClient.GetChannel()
	if channel == nil {
		return fmt.Errorf("rabbitmq channel is nil")
	}
	return channel.Ack(deliveryTag, false)
}

func (w *Worker) nack(deliveryTag uint64, requeue bool) error {
	channel := w.rabbitClient.GetChannel()
	if channel == nil {
		return fmt.Errorf("rabbitmq channel is nil")
	}
	return channel.Nack(deliveryTag, false, requeue)
}
