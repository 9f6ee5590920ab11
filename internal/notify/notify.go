// Package notify displays desktop notifications and plays notification sounds
package notify

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/ayoisaiah/diary/internal/apperr"
)

// SoundOff disables the notification sound.
const SoundOff = "off"

var errInvalidSoundFormat = &apperr.Error{
	Message: "sound file %q must be in ogg, mp3, flac, or wav format",
}

// Desktop sends desktop notifications.
type Desktop struct {
	logger *slog.Logger
	// Icon is an optional path to the notification icon.
	Icon string
	// Sound is an optional path to an audio file played with each
	// notification.
	Sound   string
	Enabled bool
}

// New returns a Desktop notifier.
func New(enabled bool, sound, icon string, logger *slog.Logger) *Desktop {
	if logger == nil {
		logger = slog.Default()
	}

	return &Desktop{
		Enabled: enabled,
		Sound:   sound,
		Icon:    icon,
		logger:  logger,
	}
}

// Notify displays a notification and starts playing the sound in the
// background.
func (d *Desktop) Notify(title, message string) error {
	if !d.Enabled {
		return nil
	}

	err := beeep.Notify(title, message, d.Icon)
	if err != nil {
		return err
	}

	if d.Sound == "" || d.Sound == SoundOff {
		return nil
	}

	go func() {
		if err := Play(d.Sound); err != nil {
			d.logger.Warn("unable to play sound", "sound", d.Sound, "error", err)
		}
	}()

	return nil
}

// decode returns an audio stream for the sound file at path.
func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		return vorbis.Decode(f)
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".wav":
		return wav.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, errInvalidSoundFormat.Fmt(path)
	}
}

// ValidateSound reports whether path names a supported sound file.
func ValidateSound(path string) error {
	if path == "" || path == SoundOff {
		return nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg", ".mp3", ".flac", ".wav":
	default:
		return errInvalidSoundFormat.Fmt(path)
	}

	_, err := os.Stat(path)

	return err
}

// Play plays the sound file at path and blocks until it finishes.
func Play(path string) error {
	stream, format, err := decode(path)
	if err != nil {
		return err
	}

	defer stream.Close()

	bufferSize := 10

	err = speaker.Init(
		format.SampleRate,
		format.SampleRate.N(time.Duration(int(time.Second)/bufferSize)),
	)
	if err != nil {
		return err
	}

	done := make(chan bool)

	speaker.Play(beep.Seq(stream, beep.Callback(func() {
		done <- true
	})))

	<-done

	speaker.Clear()
	speaker.Close()

	return nil
}
