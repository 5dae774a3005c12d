package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jeongseonghan/modviz/internal/modem"
)

// ErrInvalidName is returned for names that would escape the export
// directory.
var ErrInvalidName = errors.New("invalid export file name")

// Uploader copies a finished export to remote storage.
type Uploader interface {
	Upload(ctx context.Context, path, name string, format Format, sum uint32) (location string, err error)
}

// Request describes one export.
type Request struct {
	Config  modem.Config
	Message modem.Message
	Name    string
	// Noise adds Gaussian noise at Config.SNRdB. Nil exports the clean
	// signal.
	Noise *modem.Noise
}

// Result describes a written export.
type Result struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Format   string `json:"format"`
	Samples  int    `json:"samples"`
	Bytes    int64  `json:"bytes"`
	CRC32    uint32 `json:"crc32"`
	Location string `json:"location,omitempty"`
}

// Exporter writes waveforms into a directory. A file is either written
// completely or not at all.
type Exporter struct {
	dir      string
	uploader Uploader
	log      *zap.Logger
}

// NewExporter creates an exporter writing into dir. uploader and logger may
// be nil.
func NewExporter(dir string, uploader Uploader, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{dir: dir, uploader: uploader, log: logger}
}

// Dir returns the export directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// CleanName validates a caller-supplied file name, defaulting to
// DefaultName.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName, nil
	}
	if name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

// Path returns the location of name inside the export directory.
func (e *Exporter) Path(name string) (string, error) {
	clean, err := CleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(e.dir, clean), nil
}

// Export renders req and writes it atomically. The format follows the file
// extension.
func (e *Exporter) Export(ctx context.Context, req Request) (*Result, error) {
	name, err := CleanName(req.Name)
	if err != nil {
		return nil, err
	}
	format := FormatOf(name)

	samples, err := Render(req.Config, req.Message, req.Noise)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(e.dir, name)
	if err := writeAtomic(path, func(f *os.File) error {
		if format == WAV {
			return EncodeWAV(f, samples, int(req.Config.SampleRate))
		}
		return EncodeRaw(f, samples)
	}); err != nil {
		e.log.Warn("export failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	sum, size, err := FileCRC32(path)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Path:    path,
		Name:    name,
		Format:  format.String(),
		Samples: len(samples),
		Bytes:   size,
		CRC32:   sum,
	}

	if e.uploader != nil {
		loc, err := e.uploader.Upload(ctx, path, name, format, sum)
		if err != nil {
			e.log.Warn("upload failed", zap.String("name", name), zap.Error(err))
			return res, fmt.Errorf("upload %s: %w", name, err)
		}
		res.Location = loc
	}

	e.log.Info("waveform exported",
		zap.String("path", path),
		zap.String("format", res.Format),
		zap.Int("samples", res.Samples),
		zap.Int64("bytes", res.Bytes),
		zap.Uint32("crc32", sum),
		zap.String("location", res.Location),
	)
	return res, nil
}

// writeAtomic writes through a temp file in the target directory and
// renames it into place only after a successful sync.
func writeAtomic(path string, write func(*os.File) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
