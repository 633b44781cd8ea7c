package tui

import (
	"context"
	"time"

	"github.com/sadopc/playtime/internal/ledger"
)

// timerState tracks the current state of the timer.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// timerModel measures one play session. Nothing is written until stop.
type timerModel struct {
	ledger *ledger.Ledger

	state     timerState
	startTime time.Time
	startedAt time.Time // wall clock written to the ledger
	elapsed   time.Duration
	pausedAt  time.Time
	pauseGap  time.Duration

	gameID   string
	gameName string

	// Idle detection
	lastActivity time.Time
	idleTimeout  time.Duration
	idleStop     bool // stop instead of pause when idle
	isIdle       bool
}

func newTimerModel(l *ledger.Ledger) timerModel {
	return timerModel{
		ledger:       l,
		state:        timerStopped,
		lastActivity: time.Now(),
		idleTimeout:  10 * time.Minute,
	}
}

func (t *timerModel) start(gameID, gameName string) {
	t.state = timerRunning
	t.startTime = time.Now()
	t.startedAt = now()
	t.elapsed = 0
	t.pauseGap = 0
	t.gameID = gameID
	t.gameName = gameName
	t.lastActivity = time.Now()
	t.isIdle = false
}

// stop records the session through the ledger and resets the timer. Play time
// spent paused is not counted. It returns nil when the timer was not running.
func (t *timerModel) stop() (*ledger.NewSession, error) {
	if t.state == timerStopped {
		return nil, nil
	}
	ns := &ledger.NewSession{
		StartedAt: t.startedAt,
		Duration:  int64(t.currentElapsed().Seconds()),
		GameID:    t.gameID,
		GameName:  t.gameName,
	}
	if err := t.ledger.RecordSession(context.Background(), *ns); err != nil {
		return nil, err
	}
	t.state = timerStopped
	t.elapsed = 0
	return ns, nil
}

func (t *timerModel) pause() {
	if t.state != timerRunning {
		return
	}
	t.state = timerPaused
	t.pausedAt = time.Now()
}

func (t *timerModel) resume() {
	if t.state != timerPaused {
		return
	}
	t.pauseGap += time.Since(t.pausedAt)
	t.state = timerRunning
	t.isIdle = false
	t.lastActivity = time.Now()
}

func (t *timerModel) toggle() {
	switch t.state {
	case timerRunning:
		t.pause()
	case timerPaused:
		t.resume()
	}
}

// tick advances the elapsed time and applies idle detection. It reports true
// when the idle action asks for the session to be stopped.
func (t *timerModel) tick() bool {
	if t.state != timerRunning {
		return false
	}
	t.elapsed = time.Since(t.startTime) - t.pauseGap

	if time.Since(t.lastActivity) > t.idleTimeout && !t.isIdle {
		t.isIdle = true
		t.pause()
		return t.idleStop
	}
	return false
}

func (t *timerModel) recordActivity() {
	t.lastActivity = time.Now()
	if t.isIdle && t.state == timerPaused {
		t.resume()
		t.isIdle = false
	}
}

func (t timerModel) running() bool {
	return t.state != timerStopped
}

func (t timerModel) paused() bool {
	return t.state == timerPaused
}

func (t timerModel) currentElapsed() time.Duration {
	if t.state == timerStopped {
		return 0
	}
	if t.state == timerPaused {
		return time.Since(t.startTime) - t.pauseGap - time.Since(t.pausedAt)
	}
	return time.Since(t.startTime) - t.pauseGap
}
