package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// wavFormat holds WAV file format information
type wavFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// parseWAV parses a WAV file and returns the format and raw sample data
func parseWAV(data []byte) (*wavFormat, []byte, error) {
	reader := bytes.NewReader(data)

	riff := make([]byte, 4)
	if _, err := io.ReadFull(reader, riff); err != nil {
		return nil, nil, fmt.Errorf("read RIFF header: %w", err)
	}
	if string(riff) != "RIFF" {
		return nil, nil, fmt.Errorf("not a RIFF file")
	}

	// Skip file size
	reader.Seek(4, io.SeekCurrent)

	wave := make([]byte, 4)
	if _, err := io.ReadFull(reader, wave); err != nil {
		return nil, nil, fmt.Errorf("read WAVE header: %w", err)
	}
	if string(wave) != "WAVE" {
		return nil, nil, fmt.Errorf("not a WAVE file")
	}

	format := &wavFormat{}
	var dataStart int64
	var dataSize uint32

	for {
		chunkID := make([]byte, 4)
		if _, err := io.ReadFull(reader, chunkID); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, nil, err
		}

		var chunkSize uint32
		if err := binary.Read(reader, binary.LittleEndian, &chunkSize); err != nil {
			return nil, nil, err
		}

		switch string(chunkID) {
		case "fmt ":
			var audioFormat, numChannels uint16
			var sampleRate uint32
			binary.Read(reader, binary.LittleEndian, &audioFormat)
			binary.Read(reader, binary.LittleEndian, &numChannels)
			binary.Read(reader, binary.LittleEndian, &sampleRate)
			format.Channels = int(numChannels)
			format.SampleRate = int(sampleRate)

			// Skip byte rate and block align
			reader.Seek(6, io.SeekCurrent)

			var bitsPerSample uint16
			binary.Read(reader, binary.LittleEndian, &bitsPerSample)
			format.BitDepth = int(bitsPerSample)

			if remaining := int64(chunkSize) - 16; remaining > 0 {
				reader.Seek(remaining, io.SeekCurrent)
			}
		case "data":
			dataStart, _ = reader.Seek(0, io.SeekCurrent)
			dataSize = chunkSize
			reader.Seek(int64(chunkSize), io.SeekCurrent)
		default:
			reader.Seek(int64(chunkSize), io.SeekCurrent)
		}

		if dataSize > 0 && format.SampleRate > 0 {
			break
		}
	}

	if format.SampleRate == 0 || dataSize == 0 {
		return nil, nil, fmt.Errorf("missing fmt or data chunk")
	}
	if format.BitDepth != 16 {
		return nil, nil, fmt.Errorf("unsupported bit depth %d, want 16", format.BitDepth)
	}

	audioData := make([]byte, dataSize)
	reader.Seek(dataStart, io.SeekStart)
	if _, err := io.ReadFull(reader, audioData); err != nil {
		return nil, nil, fmt.Errorf("read sample data: %w", err)
	}

	return format, audioData, nil
}

const (
	chimeSampleRate = 44100
	chimeToneLen    = 0.22 // seconds per tone
)

// builtinChime synthesizes the default two-tone alert cue so the daemon
// needs no bundled sound asset
func builtinChime() (*wavFormat, []byte) {
	tones := []float64{880, 1174.66}
	samplesPerTone := int(chimeToneLen * chimeSampleRate)

	buf := make([]byte, 0, 2*samplesPerTone*len(tones))
	for _, freq := range tones {
		for i := 0; i < samplesPerTone; i++ {
			// Linear fade-out keeps the tone transition click-free.
			env := 1 - float64(i)/float64(samplesPerTone)
			v := math.Sin(2*math.Pi*freq*float64(i)/chimeSampleRate) * env * 0.6
			s := int16(v * math.MaxInt16)
			buf = append(buf, byte(s), byte(s>>8))
		}
	}

	return &wavFormat{SampleRate: chimeSampleRate, Channels: 1, BitDepth: 16}, buf
}
