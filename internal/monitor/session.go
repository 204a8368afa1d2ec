package monitor

import (
	"errors"
	"sync"
	"time"

	"distress-service/internal/emotion"
	"distress-service/internal/grounding"
	"distress-service/internal/patient"
	"distress-service/internal/simulator"
)

var ErrNudgeUnsupported = errors.New("score source does not accept nudges")

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	PatientID         string        `json:"patient_id"`
	PatientName       string        `json:"patient_name"`
	Level             emotion.Level `json:"level"`
	DistressScore     float64       `json:"distress_score"`
	Mode              string        `json:"mode"`
	CanCloseGrounding bool          `json:"can_close_grounding"`
	CameraActive      bool          `json:"camera_active"`
	LastActivity      time.Time     `json:"last_activity"`
	Seq               uint64        `json:"seq"`
}

func (s Snapshot) GroundingActive() bool {
	return s.Mode == grounding.ModeGrounding
}

// Status converts the snapshot into the persisted status record.
func (s Snapshot) Status() patient.Status {
	camera := patient.CameraInactive
	if s.CameraActive {
		camera = patient.CameraActive
	}
	return patient.Status{
		PatientID:            s.PatientID,
		CurrentDistressLevel: emotion.StatusLevel(s.Level),
		CurrentMode:          s.Mode,
		CameraStatus:         camera,
		LastActivity:         s.LastActivity,
	}
}

// Update is the outcome of a reading. EnteredGrounding is set only on the
// reading that moved the session from normal into grounding.
type Update struct {
	Snapshot         Snapshot
	EnteredGrounding bool
}

// Session owns the monitoring state of one patient. Every reading is
// clamped, classified and fed to the grounding controller under one lock.
type Session struct {
	mu  sync.Mutex
	seq uint64

	pubMu     sync.Mutex
	published uint64

	patientID   string
	patientName string

	source     simulator.Source
	controller *grounding.Controller
	camera     bool
	state      emotion.State
	activity   time.Time
	now        func() time.Time
}

func NewSession(patientID, patientName string, source simulator.Source, initialScore float64, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	at := now()
	return &Session{
		patientID:   patientID,
		patientName: patientName,
		source:      source,
		controller:  grounding.NewController(),
		state:       emotion.NewState(initialScore, at),
		activity:    at,
		now:         now,
		seq:         1,
	}
}

// Restore seeds camera and grounding mode from a persisted status.
func (s *Session) Restore(st *patient.Status) {
	if st == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.camera = st.CameraStatus == patient.CameraActive
	s.controller.Restore(st.CurrentMode == grounding.ModeGrounding)
	s.seq++
}

// Step takes one reading from the source. It reports false and leaves the
// state alone while the camera is off.
func (s *Session) Step() (Update, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.camera {
		return Update{Snapshot: s.snapshotLocked()}, false
	}
	return s.applyLocked(s.source.Tick()), true
}

func (s *Session) Apply(score float64) Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applyLocked(score)
}

func (s *Session) Nudge(delta float64) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.source.(simulator.Nudger)
	if !ok {
		return Update{}, ErrNudgeUnsupported
	}
	return s.applyLocked(n.Nudge(delta)), nil
}

// CloseGrounding asks to leave grounding mode; it is refused while the
// latest reading is elevated.
func (s *Session) CloseGrounding() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	closed := s.controller.RequestClose()
	if closed {
		s.activity = s.now()
		s.seq++
	}
	return s.snapshotLocked(), closed
}

func (s *Session) SetCamera(active bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.camera = active
	s.activity = s.now()
	s.seq++
	return s.snapshotLocked()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

func (s *Session) applyLocked(score float64) Update {
	at := s.now()
	s.state = emotion.NewState(score, at)
	s.activity = at
	s.seq++
	entered := s.controller.Observe(s.state.Level)
	return Update{Snapshot: s.snapshotLocked(), EnteredGrounding: entered}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		PatientID:         s.patientID,
		PatientName:       s.patientName,
		Level:             s.state.Level,
		DistressScore:     s.state.DistressScore,
		Mode:              s.controller.Mode(),
		CanCloseGrounding: s.controller.CanClose(),
		CameraActive:      s.camera,
		LastActivity:      s.activity,
		Seq:               s.seq,
	}
}

// Publish hands snap to fn unless a newer snapshot of this session has
// already gone out. Calls are serialized per session, so fn always sees
// snapshots in the order their state changes happened.
func (s *Session) Publish(snap Snapshot, fn func(Snapshot)) bool {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	if snap.Seq <= s.published {
		return false
	}
	s.published = snap.Seq
	fn(snap)
	return true
}
