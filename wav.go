package bramble

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// pcmData is a decoded WAV stream: interleaved samples normalized to [-1, 1].
type pcmData struct {
	sampleRate int
	channels   int
	bits       int
	float      bool
	samples    []float32
}

// canonical reports whether the source was 16-bit integer PCM, the format
// encodeWAV produces.
func (p *pcmData) canonical() bool {
	return !p.float && p.bits == 16
}

var errNotWAV = errors.New("not a RIFF/WAVE stream")

// decodeWAV parses a RIFF/WAVE byte stream. Integer samples are divided by
// 2^(bits-1)-1 and clamped; 8-bit samples are unsigned and offset first.
func decodeWAV(data []byte) (*pcmData, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errNotWAV
	}

	var (
		p        pcmData
		format   uint16
		haveFmt  bool
		body     []byte
		haveData bool
	)
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		off += 8
		end := off + size
		if size < 0 || end > len(data) {
			if id != "data" {
				return nil, fmt.Errorf("chunk %q overruns stream", id)
			}
			// Some writers leave the data size unpatched; take what is there.
			end = len(data)
		}
		chunk := data[off:end]
		switch id {
		case "fmt ":
			if len(chunk) < 16 {
				return nil, fmt.Errorf("fmt chunk too short (%d bytes)", len(chunk))
			}
			format = binary.LittleEndian.Uint16(chunk[0:2])
			p.channels = int(binary.LittleEndian.Uint16(chunk[2:4]))
			p.sampleRate = int(binary.LittleEndian.Uint32(chunk[4:8]))
			p.bits = int(binary.LittleEndian.Uint16(chunk[14:16]))
			if format == wavFormatExtensible {
				if len(chunk) < 26 {
					return nil, errors.New("extensible fmt chunk too short")
				}
				format = binary.LittleEndian.Uint16(chunk[24:26])
			}
			haveFmt = true
		case "data":
			body = chunk
			haveData = true
		}
		off = end
		if size%2 == 1 {
			off++
		}
	}

	if !haveFmt {
		return nil, errors.New("missing fmt chunk")
	}
	if !haveData {
		return nil, errors.New("missing data chunk")
	}
	if p.channels < 1 {
		return nil, fmt.Errorf("invalid channel count %d", p.channels)
	}
	if p.sampleRate < 1 {
		return nil, fmt.Errorf("invalid sample rate %d", p.sampleRate)
	}

	switch format {
	case wavFormatPCM:
		switch p.bits {
		case 8, 16, 24, 32:
		default:
			return nil, fmt.Errorf("unsupported integer bit depth %d", p.bits)
		}
	case wavFormatFloat:
		if p.bits != 32 && p.bits != 64 {
			return nil, fmt.Errorf("unsupported float bit depth %d", p.bits)
		}
		p.float = true
	default:
		return nil, fmt.Errorf("unsupported format tag %#x", format)
	}

	width := p.bits / 8
	n := len(body) / width
	p.samples = make([]float32, n)
	scale := float64(int64(1)<<(p.bits-1) - 1)
	for i := range n {
		b := body[i*width : (i+1)*width]
		var v float64
		switch {
		case p.float && p.bits == 32:
			v = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		case p.float:
			v = math.Float64frombits(binary.LittleEndian.Uint64(b))
		case p.bits == 8:
			v = (float64(b[0]) - 128) / scale
		case p.bits == 16:
			v = float64(int16(binary.LittleEndian.Uint16(b))) / scale
		case p.bits == 24:
			raw := int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16)
			raw = raw << 8 >> 8
			v = float64(raw) / scale
		default:
			v = float64(int32(binary.LittleEndian.Uint32(b))) / scale
		}
		p.samples[i] = float32(clampUnit(v))
	}
	return &p, nil
}

// encodeWAV writes canonical 16-bit integer PCM with a 44-byte header.
func encodeWAV(sampleRate, channels int, samples []float32) []byte {
	dataLen := len(samples) * 2
	var buf bytes.Buffer
	buf.Grow(44 + dataLen)

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, struct {
		Size       uint32
		Format     uint16
		Channels   uint16
		SampleRate uint32
		ByteRate   uint32
		Align      uint16
		Bits       uint16
	}{
		Size:       16,
		Format:     wavFormatPCM,
		Channels:   uint16(channels),
		SampleRate: uint32(sampleRate),
		ByteRate:   uint32(sampleRate * channels * 2),
		Align:      uint16(channels * 2),
		Bits:       16,
	})
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataLen))

	pcm := make([]byte, dataLen)
	for i, s := range samples {
		v := int16(math.Round(clampUnit(float64(s)) * math.MaxInt16))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	buf.Write(pcm)
	return buf.Bytes()
}
