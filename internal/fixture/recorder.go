// Package fixture records HTTP interactions to YAML cassettes and
// replays them, so provider tests can run without network access.
// Declared secrets are replaced with Placeholder before anything is
// written to disk or compared.
package fixture

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/cassette"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/recorder"
)

const cassetteExt = ".yaml"

var (
	// ErrNoFixture is returned when replaying a cassette that was never recorded.
	ErrNoFixture = errors.New("fixture: no recorded fixture")

	// ErrNoInteraction is returned in replay mode when no unplayed recorded
	// interaction matches the request.
	ErrNoInteraction = cassette.ErrInteractionNotFound

	// ErrLocked is returned when another process is re-recording the same
	// cassette.
	ErrLocked = errors.New("fixture: cassette is being recorded by another process")
)

// Options configures a Recorder.
type Options struct {
	// Mode is one of recorder.ModeReplayOnly, recorder.ModeRecordOnly or
	// recorder.ModePassthrough.
	Mode recorder.Mode

	// Path is the cassette file, including its .yaml extension.
	Path string

	// Transport performs real requests in record and passthrough mode.
	// Defaults to http.DefaultTransport.
	Transport http.RoundTripper

	Scrubber Scrubber
}

// Recorder is an http.RoundTripper that records or replays interactions.
type Recorder struct {
	*recorder.Recorder

	path string
	lock *flock.Flock

	mu      sync.Mutex
	stopped bool
}

// New opens a Recorder. Replay mode loads the cassette immediately.
// Record mode takes an exclusive lock on "<path>.lock" that is held
// until Stop.
func New(opts Options) (*Recorder, error) {
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	r := &Recorder{path: opts.Path}

	switch opts.Mode {
	case recorder.ModeReplayOnly:
		if _, err := os.Stat(opts.Path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrNoFixture, opts.Path)
			}
			return nil, fmt.Errorf("fixture: %w", err)
		}

	case recorder.ModeRecordOnly:
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("fixture: %w", err)
		}
		lock := flock.New(opts.Path + ".lock")
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("fixture: failed to lock %s: %w", opts.Path, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrLocked, opts.Path)
		}
		r.lock = lock

	case recorder.ModePassthrough:
	default:
		return nil, fmt.Errorf("fixture: unsupported mode %v", opts.Mode)
	}

	s := opts.Scrubber
	rec, err := recorder.New(strings.TrimSuffix(opts.Path, cassetteExt),
		recorder.WithMode(opts.Mode),
		recorder.WithRealTransport(opts.Transport),
		recorder.WithMatcher(s.Matches),
		recorder.WithHook(s.Scrub, recorder.BeforeSaveHook),
		recorder.WithSkipRequestLatency(true),
	)
	if err != nil {
		_ = r.unlock()
		if errors.Is(err, cassette.ErrCassetteNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoFixture, opts.Path)
		}
		return nil, fmt.Errorf("fixture: failed to open %s: %w", opts.Path, err)
	}
	r.Recorder = rec
	return r, nil
}

// Stop ends the session. In record mode it writes the cassette and
// releases the lock. Stop is safe to call more than once.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return nil
	}
	r.stopped = true

	err := r.Recorder.Stop()
	if err != nil {
		err = fmt.Errorf("fixture: failed to save %s: %w", r.path, err)
	}
	if unlockErr := r.unlock(); unlockErr != nil && err == nil {
		err = unlockErr
	}
	return err
}

func (r *Recorder) unlock() error {
	if r.lock == nil {
		return nil
	}
	defer func() { _ = os.Remove(r.lock.Path()) }()
	if err := r.lock.Unlock(); err != nil {
		return fmt.Errorf("fixture: failed to unlock %s: %w", r.path, err)
	}
	return nil
}

// Path returns the cassette path for a test: <dir>/<provider>/<test>.yaml.
func Path(dir, provider, test string) string {
	return filepath.Join(dir, sanitize(provider), sanitize(test)+cassetteExt)
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}
