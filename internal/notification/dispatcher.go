package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type Job struct {
	Message Message
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("notification worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing notification", "worker_id", w.ID, "template", job.Message.Template)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("notification worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type DispatcherConfig struct {
	MaxWorkers  int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher renders messages and hands them to a Sender, either inline
// (SendNow) or through a bounded queue drained by a worker pool (Enqueue).
type Dispatcher struct {
	renderer *Renderer
	sender   Sender
	logger   *slog.Logger
	config   DispatcherConfig

	jobQueue   chan Job
	workerPool chan chan Job
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
	stopped    atomic.Bool
}

func NewDispatcher(renderer *Renderer, sender Sender, config DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 4
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 100
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		renderer:   renderer,
		sender:     sender,
		logger:     logger,
		config:     config,
		jobQueue:   make(chan Job, config.QueueSize),
		workerPool: make(chan chan Job, config.MaxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	d.start()
	return d
}

func (d *Dispatcher) start() {
	d.once.Do(func() {
		for i := 0; i < d.config.MaxWorkers; i++ {
			worker := NewWorker(i, d.workerPool, d.logger)
			worker.Start(d.ctx, &d.wg, d.process)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("notification worker pool started",
			"max_workers", d.config.MaxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- job:
				case <-d.ctx.Done():
					d.logger.Info("notification dispatcher shutting down")
					return
				}
			case <-d.ctx.Done():
				d.logger.Info("notification dispatcher shutting down")
				return
			}
		case <-d.ctx.Done():
			d.logger.Info("notification dispatcher shutting down")
			return
		}
	}
}

// Enqueue never blocks. A full queue is reported to the caller, which is
// expected to log and move on.
func (d *Dispatcher) Enqueue(msg Message) error {
	if d.stopped.Load() {
		return ErrStopped
	}

	select {
	case d.jobQueue <- Job{Message: msg}:
		d.logger.Debug("notification queued",
			"template", msg.Template,
			"queue_length", len(d.jobQueue))
		return nil
	default:
		d.logger.Warn("notification queue full, dropping message",
			"template", msg.Template,
			"queue_capacity", cap(d.jobQueue))
		return ErrQueueFull
	}
}

func (d *Dispatcher) SendNow(ctx context.Context, msg Message) error {
	email, err := d.renderer.Render(msg)
	if err != nil {
		d.logger.Error("failed to render notification", "error", err, "template", msg.Template)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.SendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, email); err != nil {
		d.logger.Error("failed to send notification", "error", err, "template", msg.Template)
		return fmt.Errorf("send %s: %w", msg.Template, err)
	}

	d.logger.Info("notification sent", "template", msg.Template)
	return nil
}

func (d *Dispatcher) process(job Job) {
	email, err := d.renderer.Render(job.Message)
	if err != nil {
		d.logger.Error("failed to render notification", "error", err, "template", job.Message.Template)
		return
	}

	// queued delivery is best effort: one attempt, failures are only logged
	ctx, cancel := context.WithTimeout(context.Background(), d.config.SendTimeout)
	defer cancel()
	if err := d.sender.Send(ctx, email); err != nil {
		d.logger.Error("notification dropped", "error", err, "template", job.Message.Template)
		return
	}
	d.logger.Info("notification sent", "template", job.Message.Template)
}

// Shutdown stops accepting work, waits for the queue to empty or ctx to end,
// then stops the workers.
func (d *Dispatcher) Shutdown(ctx context.Context) {
	d.logger.Info("shutting down notification dispatcher")
	d.stopped.Store(true)

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
drain:
	for len(d.jobQueue) > 0 {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			d.logger.Warn("notification queue not drained", "remaining", len(d.jobQueue))
			break drain
		}
	}

	d.cancel()
	d.wg.Wait()
	d.logger.Info("notification dispatcher shutdown complete")
}
