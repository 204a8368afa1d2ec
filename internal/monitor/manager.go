package monitor

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"distress-service/internal/alert"
	"distress-service/internal/patient"
	"distress-service/internal/simulator"

	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("monitoring session not found")

type Alerter interface {
	Notify(ctx context.Context, req alert.Request) (alert.Result, error)
}

// Directory resolves the profile and last persisted status of a patient.
type Directory interface {
	GetProfile(ctx context.Context, id string) (*patient.Profile, error)
	GetStatus(ctx context.Context, id string) (*patient.Status, error)
}

type StatusSink interface {
	PublishStatus(ctx context.Context, st patient.Status) error
}

type StatusSinkFunc func(ctx context.Context, st patient.Status) error

func (f StatusSinkFunc) PublishStatus(ctx context.Context, st patient.Status) error {
	return f(ctx, st)
}

// Listener is told about every session change, e.g. the dashboard feed.
type Listener interface {
	SessionUpdated(s Snapshot)
}

type SourceFactory func(patientID string, initialScore float64) simulator.Source

type Options struct {
	InitialScore    float64
	AutoAlert       bool
	DispatchTimeout time.Duration
	NewSource       SourceFactory
	Now             func() time.Time
}

// Manager owns the live monitoring sessions and fans their changes out to
// status sinks, listeners and the alert engine.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	alerter   Alerter
	directory Directory
	sinks     []StatusSink
	listeners []Listener
	opts      Options
	metrics   *Metrics
	logger    *zap.SugaredLogger

	inflight sync.WaitGroup
}

func NewManager(alerter Alerter, directory Directory, logger *zap.SugaredLogger, opts Options) *Manager {
	if opts.NewSource == nil {
		opts.NewSource = func(_ string, initial float64) simulator.Source {
			return simulator.NewRandomWalk(initial, time.Now().UnixNano())
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DispatchTimeout <= 0 {
		opts.DispatchTimeout = 10 * time.Second
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		alerter:   alerter,
		directory: directory,
		opts:      opts,
		metrics:   &Metrics{},
		logger:    logger,
	}
}

func (m *Manager) AddStatusSink(s StatusSink) {
	m.sinks = append(m.sinks, s)
}

func (m *Manager) AddListener(l Listener) {
	m.listeners = append(m.listeners, l)
}

func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// Start opens a session for the patient. Starting an already running
// session returns its current snapshot.
func (m *Manager) Start(ctx context.Context, patientID string) (Snapshot, error) {
	if s, ok := m.session(patientID); ok {
		return s.Snapshot(), nil
	}

	p, err := m.directory.GetProfile(ctx, patientID)
	if err != nil {
		return Snapshot{}, err
	}

	s := NewSession(p.ID, p.Name, m.opts.NewSource(p.ID, m.opts.InitialScore), m.opts.InitialScore, m.opts.Now)

	st, err := m.directory.GetStatus(ctx, p.ID)
	switch {
	case err == nil:
		s.Restore(st)
	case errors.Is(err, patient.ErrPatientNotFound):
		// never persisted
	default:
		m.logger.Warnf("Could not restore status for patient %s: %v", p.ID, err)
	}

	m.mu.Lock()
	if existing, ok := m.sessions[p.ID]; ok {
		m.mu.Unlock()
		return existing.Snapshot(), nil
	}
	m.sessions[p.ID] = s
	m.mu.Unlock()

	snap := s.Snapshot()
	m.logger.Infof("Started monitoring patient %s (camera %v, mode %s)", p.ID, snap.CameraActive, snap.Mode)
	m.publish(ctx, s, snap)
	return snap, nil
}

// Stop ends the session and persists it with the camera off.
func (m *Manager) Stop(ctx context.Context, patientID string) error {
	m.mu.Lock()
	s, ok := m.sessions[patientID]
	delete(m.sessions, patientID)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	snap := s.SetCamera(false)
	m.logger.Infof("Stopped monitoring patient %s", patientID)
	m.publish(ctx, s, snap)
	return nil
}

func (m *Manager) Get(patientID string) (Snapshot, error) {
	s, ok := m.session(patientID)
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	return s.Snapshot(), nil
}

// Snapshots returns every live session ordered by patient id.
func (m *Manager) Snapshots() []Snapshot {
	m.mu.RLock()
	out := make([]Snapshot, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Snapshot())
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Snapshot) int { return strings.Compare(a.PatientID, b.PatientID) })
	return out
}

// TickAll takes one reading for every session whose camera is on.
func (m *Manager) TickAll(ctx context.Context) {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		u, ok := s.Step()
		if !ok {
			continue
		}
		m.metrics.ticks.Add(1)
		m.handle(ctx, s, u)
	}
}

func (m *Manager) Apply(ctx context.Context, patientID string, score float64) (Snapshot, error) {
	s, ok := m.session(patientID)
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	u := s.Apply(score)
	m.handle(ctx, s, u)
	return u.Snapshot, nil
}

func (m *Manager) Nudge(ctx context.Context, patientID string, delta float64) (Snapshot, error) {
	s, ok := m.session(patientID)
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	u, err := s.Nudge(delta)
	if err != nil {
		return Snapshot{}, err
	}
	m.handle(ctx, s, u)
	return u.Snapshot, nil
}

func (m *Manager) SetCamera(ctx context.Context, patientID string, active bool) (Snapshot, error) {
	s, ok := m.session(patientID)
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	snap := s.SetCamera(active)
	m.publish(ctx, s, snap)
	return snap, nil
}

// CloseGrounding reports false, without error, while distress is elevated.
func (m *Manager) CloseGrounding(ctx context.Context, patientID string) (Snapshot, bool, error) {
	s, ok := m.session(patientID)
	if !ok {
		return Snapshot{}, false, ErrSessionNotFound
	}
	snap, closed := s.CloseGrounding()
	if closed {
		m.publish(ctx, s, snap)
	}
	return snap, closed, nil
}

// TriggerAlert sends an alert for the session's current level right away,
// using the contacts on the patient's profile.
func (m *Manager) TriggerAlert(ctx context.Context, patientID string) (alert.Result, error) {
	s, ok := m.session(patientID)
	if !ok {
		return alert.Result{}, ErrSessionNotFound
	}
	return m.sendAlert(ctx, s.Snapshot())
}

// Wait blocks until background alerts have finished.
func (m *Manager) Wait() {
	m.inflight.Wait()
}

func (m *Manager) session(patientID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[patientID]
	return s, ok
}

func (m *Manager) handle(ctx context.Context, s *Session, u Update) {
	m.publish(ctx, s, u.Snapshot)

	if !u.EnteredGrounding {
		return
	}
	m.metrics.episodes.Add(1)
	m.logger.Infof("Patient %s entered grounding mode at score %.1f", u.Snapshot.PatientID, u.Snapshot.DistressScore)

	if m.opts.AutoAlert {
		m.fireAlert(u.Snapshot)
	}
}

// fireAlert runs the notification in the background so the session keeps
// taking readings while contacts are being reached.
func (m *Manager) fireAlert(snap Snapshot) {
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), m.opts.DispatchTimeout)
		defer cancel()

		if _, err := m.sendAlert(ctx, snap); err != nil {
			m.logger.Errorf("Auto alert for patient %s failed: %v", snap.PatientID, err)
		}
	}()
}

func (m *Manager) sendAlert(ctx context.Context, snap Snapshot) (alert.Result, error) {
	p, err := m.directory.GetProfile(ctx, snap.PatientID)
	if err != nil {
		return alert.Result{}, err
	}

	res, err := m.alerter.Notify(ctx, alert.Request{
		PatientID:     p.ID,
		PatientName:   p.Name,
		DistressLevel: snap.Level.String(),
		Contacts:      p.Contacts(),
	})
	if err != nil {
		return res, err
	}
	if res.SMSSent {
		m.metrics.alerts.Add(1)
	}
	return res, nil
}

// publish fans a snapshot out to sinks and listeners. A snapshot that was
// overtaken by a newer one of the same session is dropped.
func (m *Manager) publish(ctx context.Context, s *Session, snap Snapshot) {
	sent := s.Publish(snap, func(snap Snapshot) {
		st := snap.Status()
		for _, sink := range m.sinks {
			if err := sink.PublishStatus(ctx, st); err != nil {
				m.logger.Errorf("Failed to publish status for patient %s: %v", snap.PatientID, err)
			}
		}
		for _, l := range m.listeners {
			l.SessionUpdated(snap)
		}
	})
	if !sent {
		m.logger.Debugf("Dropped stale status %d for patient %s", snap.Seq, snap.PatientID)
	}
}
