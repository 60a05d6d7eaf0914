package service

import (
	"context"
	"fmt"
	"log"

	"github.com/wricardo/mupol-patrol/game/engine"
	"github.com/wricardo/mupol-patrol/game/runner"
)

// StartLive drives a session in real time until the run ends or StopLive
// is called. A session that is not playing is (re)started first.
func (s *gameServiceImpl) StartLive(ctx context.Context, sessionID string) (*LiveStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Live() {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrLiveAlreadyRunning)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if sess.Engine.Phase() != engine.PhasePlaying {
		s.startRun(sess)
	}

	// The loop outlives the request that started it
	liveCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sess.liveStop = cancel
	sess.liveDone = done
	sess.pending = engine.SteerNone

	loop := runner.NewLoop(s.liveInterval)
	go s.runLive(liveCtx, cancel, loop, sess, done)

	log.Printf("[LIVE] session=%s started interval=%v", sessionID, loop.Interval())
	return s.liveStatus(sess), nil
}

// StopLive stops the real-time loop and waits for it to finish
func (s *gameServiceImpl) StopLive(ctx context.Context, sessionID string) (*LiveStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	if !sess.Live() {
		sess.Unlock()
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrLiveNotRunning)
	}
	stop, done := sess.liveStop, sess.liveDone
	sess.liveStop, sess.liveDone = nil, nil
	sess.Unlock()

	stop()
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	sess.Lock()
	defer sess.Unlock()
	return s.liveStatus(sess), nil
}

// runLive is the body of a live loop goroutine. Each tick consumes the
// pending steering input before the frame runs.
func (s *gameServiceImpl) runLive(ctx context.Context, cancel context.CancelFunc, loop *runner.Loop, sess *Session, done chan struct{}) {
	defer close(done)
	defer cancel()

	err := loop.Run(ctx, func(deltaMs float64) bool {
		sess.Lock()
		defer sess.Unlock()

		input := sess.pending
		sess.pending = engine.SteerNone
		_, report, _ := s.step(sess, deltaMs, input)
		return !report.GameOver && sess.Engine.Phase() == engine.PhasePlaying
	})

	sess.Lock()
	if sess.liveDone == done {
		sess.liveStop, sess.liveDone = nil, nil
	}
	frame := sess.Engine.GetState().Frame
	s.persist(sess)
	sess.Unlock()

	reason := "run ended"
	if err != nil {
		reason = err.Error()
	}
	log.Printf("[LIVE] session=%s stopped frame=%d reason=%s", sess.ID, frame, reason)
}

// liveStatus builds the status of a locked session
func (s *gameServiceImpl) liveStatus(sess *Session) *LiveStatus {
	return &LiveStatus{
		SessionID:  sess.ID,
		Live:       sess.Live(),
		IntervalMs: float64(s.liveInterval.Microseconds()) / 1000,
		State:      sess.Engine.GetState(),
	}
}
