package monitor

import (
	"errors"
	"testing"
	"time"

	"distress-service/internal/emotion"
	"distress-service/internal/grounding"
	"distress-service/internal/patient"
	"distress-service/internal/simulator"
)

func fixedClock() func() time.Time {
	t := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

type tickOnly struct{ v float64 }

func (s tickOnly) Tick() float64 { return s.v }

func TestSessionSkipsTicksWithCameraOff(t *testing.T) {
	s := NewSession("p-1", "Sam", simulator.NewScripted(80), 20, fixedClock())

	u, ok := s.Step()
	if ok {
		t.Fatalf("tick taken with camera off")
	}
	if u.Snapshot.Level != emotion.LevelCalm || u.Snapshot.DistressScore != 20 {
		t.Errorf("state changed: %+v", u.Snapshot)
	}

	s.SetCamera(true)
	u, ok = s.Step()
	if !ok || u.Snapshot.Level != emotion.LevelElevated {
		t.Errorf("step = %+v, %v", u, ok)
	}
}

func TestSessionEntersGroundingOnceOnElevated(t *testing.T) {
	s := NewSession("p-1", "Sam", simulator.NewScripted(30, 75, 80, 60, 90), 20, fixedClock())
	s.SetCamera(true)

	var entries int
	for i := 0; i < 5; i++ {
		u, _ := s.Step()
		if u.EnteredGrounding {
			entries++
		}
		if u.Snapshot.Level == emotion.LevelElevated && !u.Snapshot.GroundingActive() {
			t.Fatalf("elevated reading %d without grounding", i)
		}
	}
	if entries != 1 {
		t.Errorf("entered grounding %d times, want 1", entries)
	}
}

func TestSessionCloseGrounding(t *testing.T) {
	s := NewSession("p-1", "Sam", simulator.NewScripted(), 20, fixedClock())

	if _, closed := s.CloseGrounding(); closed {
		t.Errorf("closed while not grounding")
	}

	s.Apply(85)
	if snap, closed := s.CloseGrounding(); closed || !snap.GroundingActive() || snap.CanCloseGrounding {
		t.Errorf("closed while elevated: %+v", snap)
	}

	s.Apply(40)
	snap, closed := s.CloseGrounding()
	if !closed || snap.Mode != grounding.ModeNormal {
		t.Errorf("close after calming = %+v, %v", snap, closed)
	}
}

func TestSessionClampsScores(t *testing.T) {
	s := NewSession("p-1", "Sam", simulator.NewScripted(), 20, fixedClock())

	if u := s.Apply(150); u.Snapshot.DistressScore != emotion.MaxScore {
		t.Errorf("score = %v", u.Snapshot.DistressScore)
	}
	if u := s.Apply(-5); u.Snapshot.DistressScore != emotion.MinScore {
		t.Errorf("score = %v", u.Snapshot.DistressScore)
	}
}

func TestSessionNudge(t *testing.T) {
	s := NewSession("p-1", "Sam", simulator.NewRandomWalk(20, 1), 20, fixedClock())

	u, err := s.Nudge(60)
	if err != nil {
		t.Fatalf("Nudge: %v", err)
	}
	if u.Snapshot.DistressScore != 80 || !u.EnteredGrounding {
		t.Errorf("nudge = %+v", u)
	}

	s = NewSession("p-1", "Sam", tickOnly{10}, 20, fixedClock())
	if _, err := s.Nudge(5); !errors.Is(err, ErrNudgeUnsupported) {
		t.Errorf("err = %v", err)
	}
}

func TestSessionRestore(t *testing.T) {
	s := NewSession("p-1", "Sam", simulator.NewScripted(), 20, fixedClock())
	s.Restore(&patient.Status{CameraStatus: patient.CameraActive, CurrentMode: grounding.ModeGrounding})

	snap := s.Snapshot()
	if !snap.CameraActive || !snap.GroundingActive() {
		t.Errorf("snapshot = %+v", snap)
	}

	if u := s.Apply(90); u.EnteredGrounding {
		t.Errorf("restored grounding session re-entered")
	}
}

func TestSnapshotStatus(t *testing.T) {
	snap := Snapshot{
		PatientID:    "p-1",
		Level:        emotion.LevelMild,
		Mode:         grounding.ModeNormal,
		CameraActive: true,
	}
	st := snap.Status()
	if st.CurrentDistressLevel != emotion.StatusLow || st.CameraStatus != patient.CameraActive || st.CurrentMode != grounding.ModeNormal {
		t.Errorf("status = %+v", st)
	}
}

func TestSessionPublishDropsOlderSnapshots(t *testing.T) {
	s := NewSession("p-1", "Sam", tickOnly{v: 40}, 20, fixedClock())

	older := s.Apply(80).Snapshot
	newer := s.Apply(30).Snapshot
	if newer.Seq <= older.Seq {
		t.Fatalf("seq %d not after %d", newer.Seq, older.Seq)
	}

	var got []uint64
	record := func(snap Snapshot) { got = append(got, snap.Seq) }

	if !s.Publish(newer, record) {
		t.Errorf("newer snapshot not published")
	}
	if s.Publish(older, record) {
		t.Errorf("older snapshot published after newer")
	}
	if len(got) != 1 || got[0] != newer.Seq {
		t.Errorf("published = %v", got)
	}
}
