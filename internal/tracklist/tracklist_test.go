package tracklist

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"15. Song Title.mp3", "Song Title"},
		{"15 Song Title.mp3", "Song Title"},
		{"007.   Spaced.mp3", "Spaced"},
		{"Song.mp3", "Song"},
		{"1. 2. Nested.mp3", "2. Nested"},
		{"12 34 Numbers.mp3", "34 Numbers"},
		{"15.Song.mp3", "15.Song"},
		{"1999.mp3", "1999"},
		{"/music/pool/03. Deep Cut.flac", "Deep Cut"},
		{"Ünïcode Tïtle.mp3", "Ünïcode Tïtle"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.in); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "00:00"},
		{999, "00:00"},
		{2800, "00:02"},
		{59999, "00:59"},
		{60000, "01:00"},
		{754321, "12:34"},
		{6000000, "100:00"},
		{-5, "00:00"},
	}
	for _, tt := range tests {
		if got := Timestamp(tt.ms); got != tt.want {
			t.Errorf("Timestamp(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestBuilderLinesAndFile(t *testing.T) {
	b := NewBuilder("Hyper Demon Remix")
	b.Add(0, "01. A.mp3")
	b.Add(2800, "B.mp3")

	want := []string{"00:00 A (Hyper Demon Remix)", "00:02 B (Hyper Demon Remix)"}
	got := b.Lines()
	if len(got) != len(want) {
		t.Fatalf("Lines = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	path := filepath.Join(t.TempDir(), "list.txt")
	if err := b.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != want[0]+"\n"+want[1] {
		t.Errorf("file = %q", data)
	}
}

func TestEntryWithoutTag(t *testing.T) {
	e := NewBuilder("").Add(61000, "Solo.mp3")
	if got := e.String(); got != "01:01 Solo" {
		t.Errorf("String() = %q, want %q", got, "01:01 Solo")
	}
}
