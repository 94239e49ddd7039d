package export

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// FontRegistry loads the Arabic TTF font once per process and shares the
// bytes with every generator.
type FontRegistry struct {
	path   string
	logger *zap.Logger

	once   sync.Once
	data   []byte
	err    error
	reject sync.Once
}

// NewFontRegistry creates a registry for the font at path
func NewFontRegistry(path string, logger *zap.Logger) *FontRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FontRegistry{
		path:   path,
		logger: logger,
	}
}

// Load returns the font bytes. A failure is remembered and logged only once.
func (r *FontRegistry) Load() ([]byte, error) {
	r.once.Do(func() {
		if r.path == "" {
			r.err = fmt.Errorf("no font path configured")
		} else {
			data, err := os.ReadFile(r.path)
			switch {
			case err != nil:
				r.err = fmt.Errorf("failed to read font %s: %w", r.path, err)
			case len(data) == 0:
				r.err = fmt.Errorf("font %s is empty", r.path)
			default:
				r.data = data
			}
		}

		if r.err != nil {
			r.logger.Warn("Arabic font unavailable, falling back to core font",
				zap.String("path", r.path),
				zap.Error(r.err),
			)
		}
	})
	return r.data, r.err
}

// Reject records that the loaded bytes are not a usable font. It is warned
// about once; every generator still falls back on its own.
func (r *FontRegistry) Reject(err error) {
	r.reject.Do(func() {
		r.logger.Warn("Arabic font rejected by renderer, falling back to core font",
			zap.String("path", r.path),
			zap.Error(err),
		)
	})
}

// Available reports whether the font loaded
func (r *FontRegistry) Available() bool {
	_, err := r.Load()
	return err == nil
}
