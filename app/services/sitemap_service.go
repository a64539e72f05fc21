// Package services provides external service integrations and technical concerns like captchas, tokens, and sitemap pings
package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/scriptbin/scriptbin/utils"
)

// Enqueued sitemap ping tasks partitioned by engine and outcome
var sitemapTasksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sitemap_tasks_total",
		Help: "Sitemap ping tasks enqueued after script submissions",
	},
	[]string{"engine", "outcome"},
)

// Search engines pinged after every committed submission
const (
	SitemapEngineGoogle = "google"
	SitemapEngineBing   = "bing"
)

// SitemapNotifier enqueues fire-and-forget sitemap ping tasks after a script
// submission commits. Tasks are handed to external queue infrastructure; this
// component never awaits results, and enqueue failures must not surface to
// the caller. Disabled entirely in debug mode.
type SitemapNotifier interface {
	// NotifySitemaps enqueues one ping task per search engine for the
	// committed permalink
	NotifySitemaps(ctx context.Context, permalink string)
}

// SitemapTask is the queue payload consumed by the ping workers
type SitemapTask struct {
	Engine     string `json:"engine"`
	Permalink  string `json:"permalink"`
	EnqueuedAt string `json:"enqueued_at"`
}

// RedisSitemapNotifier pushes tasks onto a Redis list
type RedisSitemapNotifier struct {
	rc       *redis.Client
	queueKey string
	engines  []string
}

// NewRedisSitemapNotifier creates a notifier backed by a Redis list queue
func NewRedisSitemapNotifier(rc *redis.Client, queueKey string) SitemapNotifier {
	if queueKey == "" {
		queueKey = utils.SitemapQueueKey
	}
	return &RedisSitemapNotifier{
		rc:       rc,
		queueKey: queueKey,
		engines:  []string{SitemapEngineGoogle, SitemapEngineBing},
	}
}

// NotifySitemaps enqueues one task per engine; each enqueue is independent
// and a failure is logged and swallowed
func (n *RedisSitemapNotifier) NotifySitemaps(ctx context.Context, permalink string) {
	if n.rc == nil {
		return
	}
	for _, engine := range n.engines {
		task := SitemapTask{
			Engine:     engine,
			Permalink:  permalink,
			EnqueuedAt: utils.UTCNowRFC3339(),
		}
		payload, err := json.Marshal(task)
		if err != nil {
			log.Printf("sitemap ping marshal failed for %s: %v", engine, err)
			continue
		}

		pushCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := n.rc.LPush(pushCtx, n.queueKey, payload).Err(); err != nil {
			log.Printf("sitemap ping enqueue failed for %s: %v", engine, err)
			sitemapTasksTotal.WithLabelValues(engine, "error").Inc()
		} else {
			sitemapTasksTotal.WithLabelValues(engine, "ok").Inc()
		}
		cancel()
	}
}

// NoopSitemapNotifier drops all pings; used in debug mode and when Redis is
// not configured
type NoopSitemapNotifier struct{}

func NewNoopSitemapNotifier() SitemapNotifier {
	return &NoopSitemapNotifier{}
}

func (n *NoopSitemapNotifier) NotifySitemaps(ctx context.Context, permalink string) {}

// MockSitemapNotifier records pings for tests
type MockSitemapNotifier struct {
	Pings []SitemapTask
}

func NewMockSitemapNotifier() *MockSitemapNotifier {
	return &MockSitemapNotifier{}
}

func (n *MockSitemapNotifier) NotifySitemaps(ctx context.Context, permalink string) {
	for _, engine := range []string{SitemapEngineGoogle, SitemapEngineBing} {
		n.Pings = append(n.Pings, SitemapTask{
			Engine:     engine,
			Permalink:  permalink,
			EnqueuedAt: utils.UTCNowRFC3339(),
		})
	}
}
