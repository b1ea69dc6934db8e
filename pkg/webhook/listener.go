package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nsqio/go-diskqueue"
	"github.com/rs/zerolog/log"
	"github.com/wandb/parallel"
)

const (
	defaultMaxWorkers   = 4
	defaultMaxBodyBytes = int64(10 * 1000 * 1000)
)

// ListenerOptions configure the notification endpoint.
type ListenerOptions struct {
	Address      string
	QueueFolder  string
	MaxWorkers   int
	MaxBodyBytes int64
}

// Listener accepts notification POSTs, queues them on disk and feeds them
// through a bounded worker pool.
type Listener struct {
	options   *ListenerOptions
	processor *Processor
	queue     diskqueue.Interface
	queueFile string
	server    *http.Server
}

func NewListener(options *ListenerOptions, processor *Processor) *Listener {
	if options.MaxWorkers < 1 {
		options.MaxWorkers = defaultMaxWorkers
	}
	if options.MaxBodyBytes < 1 {
		options.MaxBodyBytes = defaultMaxBodyBytes
	}

	queue, queueFile := NewQueue(options.QueueFolder)

	l := &Listener{
		options:   options,
		processor: processor,
		queue:     queue,
		queueFile: queueFile,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", l.handleDelivery)
	mux.HandleFunc("/healthz", l.handleHealth)

	l.server = &http.Server{
		Addr:              options.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return l
}

// Handler exposes the endpoint for embedding and tests.
func (l *Listener) Handler() http.Handler {
	return l.server.Handler
}

// QueueDepth returns the number of deliveries waiting on disk.
func (l *Listener) QueueDepth() int64 {
	return l.queue.Depth()
}

func (l *Listener) handleDelivery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, l.options.MaxBodyBytes))
	if err != nil {
		log.Error().Err(err).Msg("Failed reading webhook delivery body")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	err = l.queue.Put(body)
	if err != nil {
		log.Error().Err(err).Msg("Failed enqueuing webhook delivery")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Debug().Int("bytes", len(body)).Str("remote", r.RemoteAddr).Msg("Webhook delivery enqueued")
	w.WriteHeader(http.StatusAccepted)
}

func (l *Listener) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","queueDepth":%d}`, l.queue.Depth())
}

// Run serves the endpoint until ctx is cancelled, then drains the workers
// and removes the queue files.
func (l *Listener) Run(ctx context.Context) error {
	group := parallel.Limited(ctx, l.options.MaxWorkers)

	go func() {
		queueChan := l.queue.ReadChan()
		for {
			select {
			case item, ok := <-queueChan:
				if !ok {
					return
				}
				group.Go(func(ctx context.Context) {
					l.processor.Process(item)
				})
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Listener forced to shutdown")
		}
	}()

	log.Info().Str("address", l.options.Address).Msg("Webhook listener started")
	err := l.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	group.Wait()
	CleanupQueue(l.queue, l.queueFile)
	return nil
}
