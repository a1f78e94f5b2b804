// Package mixerr holds the error kinds and non-fatal warnings shared by the
// mix assembly packages.
package mixerr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCount      = errors.New("track count must be a positive number")
	ErrEmptyPool         = errors.New("no eligible source files in pool")
	ErrEmptySelection    = errors.New("no tracks selected")
	ErrUnknownTrack      = errors.New("track not in pool")
	ErrDecode            = errors.New("decode failed")
	ErrEncode            = errors.New("encode failed")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Validation reports whether err is a configuration or validation failure,
// i.e. one detected before any decoding starts.
func Validation(err error) bool {
	return errors.Is(err, ErrInvalidCount) ||
		errors.Is(err, ErrEmptyPool) ||
		errors.Is(err, ErrEmptySelection) ||
		errors.Is(err, ErrUnknownTrack)
}

// Kind classifies a Warning.
type Kind int

const (
	CountClamped Kind = iota + 1
	NameCollision
	Persistence
)

func (k Kind) String() string {
	switch k {
	case CountClamped:
		return "count-clamped"
	case NameCollision:
		return "name-collision"
	case Persistence:
		return "persistence"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Warning is a condition worth surfacing to the user that never aborts a run.
type Warning struct {
	Kind    Kind
	Message string
}

func (w Warning) String() string {
	return w.Kind.String() + ": " + w.Message
}

// Warnf builds a Warning with a formatted message.
func Warnf(kind Kind, format string, args ...any) Warning {
	return Warning{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
