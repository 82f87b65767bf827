package export

import (
	"fmt"
	"os"
	"sync"

	"github.com/fleveque/lastmosaic/internal/layout"
	"github.com/fleveque/lastmosaic/internal/render"
)

// Host provides the off-screen staging area a layout is rendered from.
type Host interface {
	Attach(root *layout.Container, background layout.Color) (Mount, error)
}

// Mount is an attached layout. Detach must be called exactly once the
// export is finished with it, whatever the outcome; extra calls are
// no-ops.
type Mount interface {
	render.Mount
	Detach() error
}

// TempHost stages each layout in a private temporary directory.
type TempHost struct {
	baseDir string
	retain  bool
}

// NewTempHost creates a host under baseDir; empty means os.TempDir().
func NewTempHost(baseDir string) *TempHost {
	return &TempHost{baseDir: baseDir}
}

// Retain keeps staging directories after Detach, for inspecting the
// intermediate SVG.
func (h *TempHost) Retain() *TempHost {
	h.retain = true
	return h
}

func (h *TempHost) Attach(root *layout.Container, background layout.Color) (Mount, error) {
	dir, err := os.MkdirTemp(h.baseDir, "lastmosaic-*")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	return &tempMount{root: root, background: background, dir: dir, retain: h.retain}, nil
}

type tempMount struct {
	root       *layout.Container
	background layout.Color
	dir        string
	retain     bool
	once       sync.Once
	err        error
}

func (m *tempMount) Root() *layout.Container  { return m.root }
func (m *tempMount) Background() layout.Color { return m.background }
func (m *tempMount) Dir() string              { return m.dir }

func (m *tempMount) Detach() error {
	m.once.Do(func() {
		if m.retain {
			return
		}
		if err := os.RemoveAll(m.dir); err != nil {
			m.err = fmt.Errorf("removing staging directory: %w", err)
		}
	})
	return m.err
}
