package monitor

import "sync/atomic"

type Metrics struct {
	ticks    atomic.Int64
	episodes atomic.Int64
	alerts   atomic.Int64
}

type MetricsSnapshot struct {
	Ticks             int64 `json:"ticks"`
	GroundingEpisodes int64 `json:"grounding_episodes"`
	AlertsSent        int64 `json:"alerts_sent"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Ticks:             m.ticks.Load(),
		GroundingEpisodes: m.episodes.Load(),
		AlertsSent:        m.alerts.Load(),
	}
}
