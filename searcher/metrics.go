package searcher

import (
	"sync/atomic"
	"time"
)

// SearchMetric summarizes one budgeted search call.
type SearchMetric struct {
	StartTime time.Time
	Duration  time.Duration
	Steps     int64
	Rollouts  int64
}

type Collector interface {
	Start()
	AddStep()
	AddRollouts(count int)
	Complete() SearchMetric
}

type collector struct {
	startTime time.Time
	steps     atomic.Int64
	rollouts  atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Start() {
	c.startTime = time.Now()
	c.steps.Store(0)
	c.rollouts.Store(0)
}

func (c *collector) AddStep() {
	c.steps.Add(1)
}

func (c *collector) AddRollouts(count int) {
	c.rollouts.Add(int64(count))
}

func (c *collector) Complete() SearchMetric {
	return SearchMetric{
		StartTime: c.startTime,
		Duration:  time.Since(c.startTime),
		Steps:     c.steps.Load(),
		Rollouts:  c.rollouts.Load(),
	}
}

type noCollector struct{}

func NewNoCollector() Collector {
	return &noCollector{}
}

func (c *noCollector) Start()                 {}
func (c *noCollector) AddStep()               {}
func (c *noCollector) AddRollouts(count int)  {}
func (c *noCollector) Complete() SearchMetric { return SearchMetric{} }
