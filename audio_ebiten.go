package bramble

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// ebitenAudio registers sounds with the process-wide Ebitengine audio context.
type ebitenAudio struct {
	ctx *audio.Context
}

func newEbitenAudio(sampleRate int) *ebitenAudio {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(sampleRate)
	}
	return &ebitenAudio{ctx: ctx}
}

// Decode converts WAV bytes to the context's PCM format. It reads the whole
// stream before returning, so the sound is playable as soon as it is
// registered.
func (a *ebitenAudio) Decode(data []byte) (Playback, error) {
	stream, err := wav.DecodeWithSampleRate(a.ctx.SampleRate(), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pcm: %w", err)
	}
	return &ebitenPlayback{ctx: a.ctx, pcm: pcm, volume: 1}, nil
}

type ebitenPlayback struct {
	ctx    *audio.Context
	pcm    []byte
	player *audio.Player
	volume float64
}

func (p *ebitenPlayback) Play(loop bool, volume float64) error {
	p.Stop()
	if loop {
		player, err := p.ctx.NewPlayer(audio.NewInfiniteLoop(bytes.NewReader(p.pcm), int64(len(p.pcm))))
		if err != nil {
			return fmt.Errorf("new looping player: %w", err)
		}
		p.player = player
	} else {
		p.player = p.ctx.NewPlayerFromBytes(p.pcm)
	}
	p.volume = volume
	p.player.SetVolume(volume)
	p.player.Play()
	return nil
}

func (p *ebitenPlayback) Stop() {
	if p.player == nil {
		return
	}
	p.player.Pause()
	_ = p.player.Close()
	p.player = nil
}

func (p *ebitenPlayback) SetVolume(volume float64) {
	p.volume = volume
	if p.player != nil {
		p.player.SetVolume(volume)
	}
}

func (p *ebitenPlayback) Close() {
	p.Stop()
	p.pcm = nil
}
