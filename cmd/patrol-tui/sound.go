package main

import (
	"log"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate   = beep.SampleRate(44100)
	hitToneHz    = 220
	hitToneLenMs = 120
)

// hitSound plays a short sine tone when the car is hit. A failed or muted
// speaker turns Play into a no-op.
type hitSound struct {
	enabled bool
}

func newHitSound(enabled bool) *hitSound {
	s := &hitSound{}
	if !enabled {
		return s
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		// Non-fatal, the patrol runs without sound
		log.Printf("Audio initialization failed: %v", err)
		return s
	}
	s.enabled = true
	return s
}

// Play starts the hit tone without waiting for it to finish
func (s *hitSound) Play() {
	if s == nil || !s.enabled {
		return
	}
	sine, err := generators.SineTone(sampleRate, hitToneHz)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(hitToneLenMs*time.Millisecond), sine))
}

func (s *hitSound) Close() {
	if s != nil && s.enabled {
		speaker.Close()
		s.enabled = false
	}
}
