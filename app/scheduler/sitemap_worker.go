// Package scheduler
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/scriptbin/scriptbin/app/services"
	"github.com/scriptbin/scriptbin/utils"
)

// SitemapWorker drains the sitemap task queue and pings search engines with
// the sitemap URL. Pings are best effort: a failed task is retried a few
// times and then dropped with a log line, never requeued forever.
type SitemapWorker struct {
	rc         *redis.Client
	httpClient *http.Client
	logger     *log.Logger

	queueKey   string
	sitemapURL string
	maxRetries int

	pingEndpoints map[string]string
}

func NewSitemapWorker(rc *redis.Client, sitemapURL string) *SitemapWorker {
	w := &SitemapWorker{
		rc:         rc,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		queueKey:   utils.SitemapQueueKey,
		sitemapURL: sitemapURL,
		maxRetries: 3,
		pingEndpoints: map[string]string{
			services.SitemapEngineGoogle: "https://www.google.com/ping",
			services.SitemapEngineBing:   "https://www.bing.com/ping",
		},
	}

	if err := w.initWorkerLogger(); err != nil {
		w.logger = log.Default()
		w.logger.Printf("sitemap worker: failed to initialize file logger: %v", err)
	}

	return w
}

// initWorkerLogger configures a logger that writes to both stdout and a
// size-rotated file under data/ (or /data)
func (w *SitemapWorker) initWorkerLogger() error {
	candidates := []string{
		filepath.Join("data"),
		"/data",
	}
	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(dir, "sitemap_worker.log"),
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		mw := io.MultiWriter(os.Stdout, rotator)
		w.logger = log.New(mw, "sitemap ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
		return nil
	}
	return fmt.Errorf("could not create sitemap worker log file in any candidate directory")
}

// Start launches the worker loop in a background goroutine and returns a stop function
func (w *SitemapWorker) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			w.consumeOne(ctx)
		}
	}()

	return cancel
}

func (w *SitemapWorker) consumeOne(ctx context.Context) {
	res, err := w.rc.BRPop(ctx, 5*time.Second, w.queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return
		}
		w.logger.Printf("sitemap worker: queue read failed: %v", err)
		// Back off so a dead Redis does not spin the loop
		select {
		case <-ctx.Done():
		case <-time.After(3 * time.Second):
		}
		return
	}
	// BRPop returns [key, value]
	if len(res) != 2 {
		return
	}

	var task services.SitemapTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Printf("sitemap worker: dropping malformed task: %v", err)
		return
	}

	w.pingWithRetry(ctx, task)
}

func (w *SitemapWorker) pingWithRetry(ctx context.Context, task services.SitemapTask) {
	endpoint, ok := w.pingEndpoints[task.Engine]
	if !ok {
		w.logger.Printf("sitemap worker: dropping task for unknown engine %q", task.Engine)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if err := w.ping(ctx, endpoint); err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			}
			continue
		}
		w.logger.Printf("sitemap worker: pinged %s for %s", task.Engine, task.Permalink)
		return
	}
	w.logger.Printf("sitemap worker: giving up on %s for %s after %d attempts: %v",
		task.Engine, task.Permalink, w.maxRetries, lastErr)
}

func (w *SitemapWorker) ping(ctx context.Context, endpoint string) error {
	pingURL := endpoint + "?sitemap=" + url.QueryEscape(w.sitemapURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pingURL, nil)
	if err != nil {
		return err
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("ping returned status %d", resp.StatusCode)
	}
	return nil
}
