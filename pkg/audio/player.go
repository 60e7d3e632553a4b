// Package audio plays the alert cue through the system audio device.
package audio

import (
	"bytes"
	"sync"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

// Global audio context singleton. oto allows only one context per process.
var (
	globalAudioCtx     *oto.Context
	globalAudioCtxOnce sync.Once
	audioCtxReady      bool
)

func initAudioContext(format *wavFormat, log *zap.Logger) {
	globalAudioCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			log.Warn("audio context unavailable, cues will be silent", zap.Error(err))
			return
		}

		// Wait for the hardware audio devices to be ready
		<-readyChan

		globalAudioCtx = ctx
		audioCtxReady = true
		log.Info("audio context initialized")
	})
}

// Player plays a single cue sound. Each Play starts the cue from the
// beginning; the repeat cadence belongs to the caller. Playback failures
// are logged and swallowed: a silent cue must never break alerting.
type Player struct {
	log  *zap.Logger
	data []byte

	mu     sync.Mutex
	player *oto.Player
}

// NewPlayer builds a cue player from WAV data. Nil data selects the
// built-in chime.
func NewPlayer(wavData []byte, log *zap.Logger) (*Player, error) {
	var format *wavFormat
	var data []byte

	if wavData == nil {
		format, data = builtinChime()
	} else {
		var err error
		format, data, err = parseWAV(wavData)
		if err != nil {
			return nil, err
		}
	}

	initAudioContext(format, log)

	return &Player{log: log, data: data}, nil
}

// Play starts the cue from the beginning, cutting off any cue still in
// flight. Safe to call when the audio device is unavailable.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !audioCtxReady || globalAudioCtx == nil {
		p.log.Debug("audio context not ready, cue skipped")
		return
	}

	p.stopLocked()
	p.player = globalAudioCtx.NewPlayer(bytes.NewReader(p.data))
	p.player.Play()
}

// Stop halts any in-flight cue and resets the player
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.player == nil {
		return
	}
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		p.log.Debug("closing audio player", zap.Error(err))
	}
	p.player = nil
}
