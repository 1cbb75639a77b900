// Package classifier fetches pages and decides whether they are live,
// removed, or unreachable.
package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/anchorscan/anchorscan/config"
	"github.com/anchorscan/anchorscan/models"
	"github.com/gocolly/colly/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Status tags a fetch outcome.
type Status int

const (
	StatusLive Status = iota
	StatusRemoved
	StatusFetchError
)

func (s Status) String() string {
	switch s {
	case StatusLive:
		return "live"
	case StatusRemoved:
		return "removed"
	case StatusFetchError:
		return "fetch_error"
	default:
		return "unknown"
	}
}

// Removal reasons recorded on Outcome.Reason.
const (
	ReasonStatus404 = "404"
	ReasonTitle     = "title"
	ReasonBody      = "body"
)

// Body fingerprints that identify a removed page served with a non-404 status.
var removedBodyFingerprints = [][]byte{
	[]byte("isErrorPage"),
	[]byte(`"template":"404"`),
	[]byte("Unable to locate the page"),
}

// Outcome is the classified result of fetching one URL. Doc is non-nil only
// for live pages.
type Outcome struct {
	Status Status
	Title  string
	Doc    *goquery.Document
	Reason string
	Err    error
}

type fetchState struct {
	statusCode int
	body       []byte
	err        error
}

// Classifier fetches single pages over HTTP and classifies the result.
// Outcomes are cached per URL so repeated classifications within a session
// do not refetch.
type Classifier struct {
	cfg       *config.Config
	collector *colly.Collector
	cache     *lru.Cache[string, *Outcome]
	Metrics   *Metrics

	requestCount int64
	cacheHits    int64

	mu      sync.Mutex
	pending *fetchState

	handlersOnce sync.Once
}

// New builds a classifier configured from cfg.
func New(cfg *config.Config) (*Classifier, error) {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	c := &Classifier{
		cfg:       cfg,
		collector: collector,
		Metrics:   NewMetrics(),
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, *Outcome](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("build outcome cache: %w", err)
		}
		c.cache = cache
	}

	return c, nil
}

// Classify fetches url once, with the configured timeout and user agent, and
// reports whether the page is live, removed, or unreachable. Failed fetches
// are not retried.
func (c *Classifier) Classify(url string) *Outcome {
	if c.cache != nil {
		if out, ok := c.cache.Get(url); ok {
			atomic.AddInt64(&c.cacheHits, 1)
			c.Metrics.IncCacheHit()
			return out
		}
	}

	c.configureHandlers()

	c.mu.Lock()
	c.pending = &fetchState{}
	atomic.AddInt64(&c.requestCount, 1)
	c.Metrics.IncRequest("started")

	start := time.Now()
	visitErr := c.collector.Visit(url)
	c.Metrics.ObserveDuration(time.Since(start))

	state := c.pending
	c.pending = nil
	c.mu.Unlock()

	out := c.evaluate(url, state, visitErr)
	c.Metrics.IncPage(out.Status.String())
	if c.cache != nil {
		c.cache.Add(url, out)
	}
	return out
}

// CacheHits reports how many classifications were served from cache.
func (c *Classifier) CacheHits() int64 {
	return atomic.LoadInt64(&c.cacheHits)
}

// RequestCount reports how many network fetches were issued.
func (c *Classifier) RequestCount() int64 {
	return atomic.LoadInt64(&c.requestCount)
}

func (c *Classifier) configureHandlers() {
	c.handlersOnce.Do(func() {
		c.collector.OnRequest(func(r *colly.Request) {
			slog.Debug("fetching page", slog.String("url", r.URL.String()))
		})

		c.collector.OnResponse(func(r *colly.Response) {
			if c.pending == nil {
				return
			}
			c.pending.statusCode = r.StatusCode
			c.pending.body = append([]byte(nil), r.Body...)
		})

		c.collector.OnError(func(r *colly.Response, err error) {
			if c.pending == nil {
				return
			}
			c.pending.err = err
			if r != nil {
				c.pending.statusCode = r.StatusCode
			}
		})
	})
}

func (c *Classifier) evaluate(url string, state *fetchState, visitErr error) *Outcome {
	if state.err != nil {
		return c.fetchFailure(url, state.err)
	}
	if visitErr != nil {
		return c.fetchFailure(url, visitErr)
	}

	if state.statusCode == http.StatusNotFound {
		slog.Debug("page removed",
			slog.String("url", url),
			slog.String("reason", ReasonStatus404),
		)
		return &Outcome{Status: StatusRemoved, Reason: ReasonStatus404}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(state.body))
	if err != nil {
		return c.fetchFailure(url, fmt.Errorf("parse html: %w", err))
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = models.MarkerNoTitle
	}

	// Title heuristics run against the computed title, fallback included.
	if strings.Contains(title, "404") || strings.Contains(strings.ToLower(title), "not found") {
		slog.Debug("page removed",
			slog.String("url", url),
			slog.String("reason", ReasonTitle),
			slog.String("title", title),
		)
		return &Outcome{Status: StatusRemoved, Reason: ReasonTitle}
	}

	for _, fingerprint := range removedBodyFingerprints {
		if bytes.Contains(state.body, fingerprint) {
			slog.Debug("page removed",
				slog.String("url", url),
				slog.String("reason", ReasonBody),
			)
			return &Outcome{Status: StatusRemoved, Reason: ReasonBody}
		}
	}

	return &Outcome{Status: StatusLive, Title: title, Doc: doc}
}

func (c *Classifier) fetchFailure(url string, err error) *Outcome {
	classified := classifyError(err)
	category := errorTypeLabel(classified)

	slog.Error("fetch failed",
		slog.String("url", url),
		slog.String("category", category),
		slog.Any("error", err),
	)
	c.Metrics.IncError(category)

	return &Outcome{Status: StatusFetchError, Err: classified}
}

func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	return err
}
