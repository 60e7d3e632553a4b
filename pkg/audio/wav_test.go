package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func buildWAV(t *testing.T, sampleRate int, channels int, bitDepth int, samples []byte) []byte {
	t.Helper()
	var buf bytes.Buffer

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(samples)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*bitDepth/8))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*bitDepth/8))
	binary.Write(&buf, binary.LittleEndian, uint16(bitDepth))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(samples)))
	buf.Write(samples)

	return buf.Bytes()
}

func TestParseWAV(t *testing.T) {
	samples := []byte{0x01, 0x02, 0x03, 0x04}
	data := buildWAV(t, 44100, 1, 16, samples)

	format, got, err := parseWAV(data)
	if err != nil {
		t.Fatalf("parseWAV: %v", err)
	}
	if format.SampleRate != 44100 || format.Channels != 1 || format.BitDepth != 16 {
		t.Errorf("format = %+v", format)
	}
	if !bytes.Equal(got, samples) {
		t.Errorf("sample data = %v, want %v", got, samples)
	}
}

func TestParseWAVRejectsGarbage(t *testing.T) {
	for _, tt := range []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not riff", []byte("OGGS----WAVE")},
		{"truncated", []byte("RIFF")},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := parseWAV(tt.data); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseWAVRejectsUnsupportedDepth(t *testing.T) {
	data := buildWAV(t, 44100, 1, 8, []byte{0x01})
	if _, _, err := parseWAV(data); err == nil {
		t.Fatal("expected error for 8-bit WAV")
	}
}

func TestBuiltinChime(t *testing.T) {
	format, data := builtinChime()
	if format.SampleRate != chimeSampleRate || format.Channels != 1 || format.BitDepth != 16 {
		t.Errorf("chime format = %+v", format)
	}
	if len(data) == 0 || len(data)%2 != 0 {
		t.Errorf("chime data length = %d", len(data))
	}
}
