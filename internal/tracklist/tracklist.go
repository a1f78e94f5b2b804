// Package tracklist builds the time-stamped track listing of a mix.
package tracklist

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	numberedDot   = regexp.MustCompile(`^\d+\.\s+`)
	numberedSpace = regexp.MustCompile(`^\d+\s+`)
)

// DisplayName derives a track title from a file name: the extension is
// removed and one leading ordinal ("15. " or "15 ") is stripped.
func DisplayName(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if loc := numberedDot.FindStringIndex(stem); loc != nil {
		return stem[loc[1]:]
	}
	if loc := numberedSpace.FindStringIndex(stem); loc != nil {
		return stem[loc[1]:]
	}
	return stem
}

// Timestamp formats a position as mm:ss. Minutes are not capped at 59.
func Timestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%02d:%02d", ms/60000, (ms%60000)/1000)
}

// Entry is one tracklist line.
type Entry struct {
	PositionMs int64
	Name       string
	Tag        string
}

func (e Entry) Timestamp() string { return Timestamp(e.PositionMs) }

func (e Entry) String() string {
	if e.Tag == "" {
		return e.Timestamp() + " " + e.Name
	}
	return fmt.Sprintf("%s %s (%s)", e.Timestamp(), e.Name, e.Tag)
}

// Builder accumulates entries in processing order.
type Builder struct {
	tag     string
	entries []Entry
}

// NewBuilder creates a builder that suffixes every entry with tag.
func NewBuilder(tag string) *Builder {
	return &Builder{tag: tag}
}

// Add records the track from file at the given mix position.
func (b *Builder) Add(positionMs int64, file string) Entry {
	e := Entry{PositionMs: positionMs, Name: DisplayName(file), Tag: b.tag}
	b.entries = append(b.entries, e)
	return e
}

func (b *Builder) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

func (b *Builder) Lines() []string {
	lines := make([]string, len(b.entries))
	for i, e := range b.entries {
		lines[i] = e.String()
	}
	return lines
}

// WriteFile stores the tracklist as UTF-8 text, one entry per line.
func (b *Builder) WriteFile(path string) error {
	return os.WriteFile(path, []byte(strings.Join(b.Lines(), "\n")), 0o644)
}
