package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// EventType represents the type of pipeline event
type EventType string

const (
	// EnhancementStarted when an enhancement request begins
	EnhancementStarted EventType = "enhancement_started"
	// EnhancementCompleted when an enhanced image is produced
	EnhancementCompleted EventType = "enhancement_completed"
	// EnhancementFailed when enhancement fails
	EnhancementFailed EventType = "enhancement_failed"
	// AssessmentCompleted when a quality assessment finishes
	AssessmentCompleted EventType = "assessment_completed"
	// ImageFetched when image is successfully fetched
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when image fetch fails
	ImageFetchFailed EventType = "image_fetch_failed"
)

// Event describes one step of a request through the pipeline
type Event struct {
	Type      EventType     `json:"event_type"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
	Source    string        `json:"source"`
	Duration  time.Duration `json:"duration"`
	Score     int           `json:"score,omitempty"`
	Stages    []string      `json:"stages,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Observer receives pipeline events
type Observer interface {
	OnEvent(ctx context.Context, event Event)
	GetObserverName() string
}

// Subject publishes events to observers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event Event)
}

// LoggingObserver logs pipeline events
type LoggingObserver struct {
	logger *logrus.Entry
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Entry) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

// OnEvent logs the event at a level matching its outcome
func (o *LoggingObserver) OnEvent(ctx context.Context, event Event) {
	fields := logrus.Fields{
		"event_type":  event.Type,
		"source":      event.Source,
		"duration_ms": event.Duration.Milliseconds(),
	}
	if event.RequestID != "" {
		fields["request_id"] = event.RequestID
	}
	if event.Score != 0 {
		fields["score"] = event.Score
	}
	if len(event.Stages) > 0 {
		fields["stages"] = event.Stages
	}
	if event.Error != "" {
		fields["error"] = event.Error
	}

	entry := o.logger.WithFields(fields)
	switch event.Type {
	case EnhancementStarted:
		entry.Info("Enhancement started")
	case EnhancementCompleted:
		entry.Info("Enhancement completed")
	case EnhancementFailed:
		entry.Error("Enhancement failed")
	case AssessmentCompleted:
		entry.Info("Assessment completed")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	default:
		entry.Info("Pipeline event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// Metrics is a point-in-time view of the counters
type Metrics struct {
	Enhancements           int64            `json:"enhancements"`
	SuccessfulEnhancements int64            `json:"successful_enhancements"`
	FailedEnhancements     int64            `json:"failed_enhancements"`
	Assessments            int64            `json:"assessments"`
	FetchFailures          int64            `json:"fetch_failures"`
	StageCounts            map[string]int64 `json:"stage_counts"`
	AvgEnhanceMillis       float64          `json:"avg_enhance_ms"`
	AvgQualityScore        float64          `json:"avg_quality_score"`
}

// MetricsObserver aggregates counters from pipeline events
type MetricsObserver struct {
	mu            sync.RWMutex
	started       int64
	completed     int64
	failed        int64
	assessments   int64
	fetchFailures int64
	stageCounts   map[string]int64
	totalDuration time.Duration
	scoreSum      int64
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{stageCounts: make(map[string]int64)}
}

// OnEvent updates the counters
func (o *MetricsObserver) OnEvent(ctx context.Context, event Event) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.Type {
	case EnhancementStarted:
		o.started++
	case EnhancementCompleted:
		o.completed++
		o.totalDuration += event.Duration
		for _, s := range event.Stages {
			o.stageCounts[s]++
		}
	case EnhancementFailed:
		o.failed++
	case AssessmentCompleted:
		o.assessments++
		o.scoreSum += int64(event.Score)
	case ImageFetchFailed:
		o.fetchFailures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() Metrics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	m := Metrics{
		Enhancements:           o.started,
		SuccessfulEnhancements: o.completed,
		FailedEnhancements:     o.failed,
		Assessments:            o.assessments,
		FetchFailures:          o.fetchFailures,
		StageCounts:            make(map[string]int64, len(o.stageCounts)),
	}
	for k, v := range o.stageCounts {
		m.StageCounts[k] = v
	}
	if o.completed > 0 {
		m.AvgEnhanceMillis = float64(o.totalDuration.Milliseconds()) / float64(o.completed)
	}
	if o.assessments > 0 {
		m.AvgQualityScore = float64(o.scoreSum) / float64(o.assessments)
	}
	return m
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	inflight  sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{observers: make([]Observer, 0)}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers the event to every observer concurrently
func (p *EventPublisher) NotifyObservers(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Observers must not block the request, so the context is detached
	ctx = context.WithoutCancel(ctx)
	for _, observer := range observers {
		p.inflight.Add(1)
		go func(obs Observer) {
			defer p.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					// Log panic but don't crash the application
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Wait blocks until every delivered event has been handled
func (p *EventPublisher) Wait() {
	p.inflight.Wait()
}
