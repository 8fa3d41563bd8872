package bramble

import "fmt"

// maxSoundSamples bounds programmatic sound length, counted in samples
// across all channels.
const maxSoundSamples = 1 << 27

// Sound is a buffer of interleaved normalized PCM samples with a lazily
// registered backend playback. The encoded form is 16-bit WAV.
type Sound struct {
	path       string
	sampleRate int
	channels   int
	samples    []float32
	encoded    []byte
	device     AudioDevice
	playback   Playback
	dirty      bool
	unloaded   bool
}

// Path returns the canonical path the sound was loaded from, or "".
func (s *Sound) Path() string { return s.path }

// SampleRate returns the sample rate in Hz.
func (s *Sound) SampleRate() (int, error) {
	if s.unloaded {
		return 0, ErrUnloaded
	}
	return s.sampleRate, nil
}

// Channels returns the interleaved channel count.
func (s *Sound) Channels() (int, error) {
	if s.unloaded {
		return 0, ErrUnloaded
	}
	return s.channels, nil
}

// Len returns the number of samples across all channels.
func (s *Sound) Len() (int, error) {
	if s.unloaded {
		return 0, ErrUnloaded
	}
	return len(s.samples), nil
}

func (s *Sound) checkIndex(i int) error {
	if s.unloaded {
		return ErrUnloaded
	}
	if i < 0 || i >= len(s.samples) {
		return fmt.Errorf("sample %d of %d: %w", i, len(s.samples), ErrOutOfBounds)
	}
	return nil
}

// Sample returns sample i.
func (s *Sound) Sample(i int) (float32, error) {
	if err := s.checkIndex(i); err != nil {
		return 0, err
	}
	return s.samples[i], nil
}

// SetSample stores v, clamped to [-1, 1], at index i and marks the sound dirty.
func (s *Sound) SetSample(i int, v float64) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.samples[i] = float32(clampUnit(v))
	s.dirty = true
	return nil
}

// EnsureUploaded re-encodes a dirty sound and registers it with the audio
// device. A sound that was never registered is registered once.
func (s *Sound) EnsureUploaded() error {
	if s.unloaded {
		return ErrUnloaded
	}
	if !s.dirty && s.playback != nil {
		return nil
	}
	if s.dirty || s.encoded == nil {
		s.encoded = encodeWAV(s.sampleRate, s.channels, s.samples)
	}
	pb, err := s.device.Decode(s.encoded)
	if err != nil {
		return fmt.Errorf("register sound: %w", err)
	}
	if s.playback != nil {
		s.playback.Close()
	}
	s.playback = pb
	s.dirty = false
	return nil
}

// Playback returns the backend playback after ensuring it is current.
func (s *Sound) Playback() (Playback, error) {
	if err := s.EnsureUploaded(); err != nil {
		return nil, err
	}
	return s.playback, nil
}

// Unload releases samples, encoded bytes and the playback.
func (s *Sound) Unload() {
	if s.playback != nil {
		s.playback.Close()
		s.playback = nil
	}
	s.samples = nil
	s.encoded = nil
	s.dirty = false
	s.unloaded = true
}

// reload swaps in a freshly decoded stream and resets the flags.
func (s *Sound) reload(p *pcmData, raw []byte) {
	s.sampleRate = p.sampleRate
	s.channels = p.channels
	s.samples = p.samples
	s.encoded = nil
	if p.canonical() {
		s.encoded = raw
	}
	s.playback = nil
	s.dirty = false
	s.unloaded = false
}

// Dirty reports whether samples changed since the last upload.
func (s *Sound) Dirty() bool { return s.dirty }

// Unloaded reports whether Unload was called.
func (s *Sound) Unloaded() bool { return s.unloaded }

func (s *Sound) String() string {
	switch {
	case s.unloaded:
		return fmt.Sprintf("Sound(unloaded %q)", s.path)
	case s.path != "":
		return fmt.Sprintf("Sound(%d Hz, %d ch, %d samples %q)", s.sampleRate, s.channels, len(s.samples), s.path)
	default:
		return fmt.Sprintf("Sound(%d Hz, %d ch, %d samples)", s.sampleRate, s.channels, len(s.samples))
	}
}
