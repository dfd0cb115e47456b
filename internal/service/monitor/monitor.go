// internal/service/monitor/monitor.go

package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"trendwatch/internal/domain/trends"
)

// TrendingSource provides the current trending searches for a geo.
// Results arrive already paced and retried; an empty slice means the
// sweep has nothing to record.
type TrendingSource interface {
	TrendingSearches(ctx context.Context, geo string) []string
}

// CaptureStore defines storage for trending captures
type CaptureStore interface {
	SaveCapture(ctx context.Context, capture trends.TrendingCapture) error
}

// EventPublisher publishes monitor events
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// Config contains configuration for the trending monitor
type Config struct {
	Interval    time.Duration
	Geos        []string
	EventsTopic string
}

// Monitor periodically captures trending searches per geo, persists
// them and publishes the terms that were not present in the previous
// sweep.
type Monitor struct {
	source   TrendingSource
	store    CaptureStore
	eventBus EventPublisher
	config   Config
	log      *logrus.Logger

	mu       sync.Mutex
	lastSeen map[string]map[string]bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// trendingEvent is the payload published for each sweep of a geo
type trendingEvent struct {
	Geo        string    `json:"geo"`
	Terms      []string  `json:"terms"`
	NewTerms   []string  `json:"new_terms"`
	CapturedAt time.Time `json:"captured_at"`
}

// NewMonitor creates a new trending monitor
func NewMonitor(source TrendingSource, store CaptureStore, eventBus EventPublisher, config Config, log *logrus.Logger) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Monitor{
		source:   source,
		store:    store,
		eventBus: eventBus,
		config:   config,
		log:      log,
		lastSeen: make(map[string]map[string]bool),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the periodic trending sweeps
func (m *Monitor) Start(ctx context.Context) error {
	m.wg.Add(1)
	go m.watchTrending()

	m.log.Infof("trending monitor started for geos %v every %s", m.config.Geos, m.config.Interval)
	return nil
}

// watchTrending runs sweeps on the configured interval
func (m *Monitor) watchTrending() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.sweep(m.ctx)
		}
	}
}

// sweep captures trending searches for every configured geo
func (m *Monitor) sweep(ctx context.Context) {
	for _, geo := range m.config.Geos {
		terms := m.source.TrendingSearches(ctx, geo)
		if len(terms) == 0 {
			m.log.Debugf("no trending terms for %s, skipping sweep", geo)
			continue
		}

		capture := trends.TrendingCapture{
			Geo:        geo,
			Terms:      terms,
			CapturedAt: time.Now().UTC(),
		}

		newTerms := m.markSeen(geo, terms)

		if err := m.store.SaveCapture(ctx, capture); err != nil {
			m.log.Errorf("error saving trending capture for %s: %v", geo, err)
		}

		if err := m.publishTrendingEvent(capture, newTerms); err != nil {
			m.log.Errorf("error publishing trending event for %s: %v", geo, err)
		}
	}
}

// markSeen records the sweep's terms and returns the ones that were not
// present in the previous sweep for this geo.
func (m *Monitor) markSeen(geo string, terms []string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := m.lastSeen[geo]

	newTerms := []string{}
	current := make(map[string]bool, len(terms))
	for _, term := range terms {
		current[term] = true
		if !seen[term] {
			newTerms = append(newTerms, term)
		}
	}

	m.lastSeen[geo] = current
	return newTerms
}

// publishTrendingEvent publishes one sweep result to the event bus
func (m *Monitor) publishTrendingEvent(capture trends.TrendingCapture, newTerms []string) error {
	event := trendingEvent{
		Geo:        capture.Geo,
		Terms:      capture.Terms,
		NewTerms:   newTerms,
		CapturedAt: capture.CapturedAt,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling trending event: %w", err)
	}

	topic := fmt.Sprintf("%s.trending.%s", m.config.EventsTopic, capture.Geo)
	return m.eventBus.Publish(topic, data)
}

// Stop gracefully stops the monitor
func (m *Monitor) Stop(ctx context.Context) error {
	m.cancel()

	c := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(c)
	}()

	select {
	case <-c:
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}
