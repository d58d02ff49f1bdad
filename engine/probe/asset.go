package probe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/gi"
	"github.com/pelletier/go-toml/v2"
)

// AssetVersion is the on-disk format version written by this package.
const AssetVersion = 1

// ErrNoAsset is returned when a volume operation needs an asset and none is attached.
var ErrNoAsset = errors.New("probe: volume has no asset")

// AssetHeader is the TOML header of a probe volume asset. The payload lives next to it in Data.
type AssetHeader struct {
	Name         string       `toml:"name"`
	Version      int          `toml:"version"`
	Baked        bool         `toml:"baked"`
	BakedAt      time.Time    `toml:"baked_at"`
	Resolution   uint32       `toml:"resolution"`
	ProbeCount   int          `toml:"probe_count"`
	RayNum       int          `toml:"ray_num"`
	SurfelStride int          `toml:"surfel_stride"`
	SHCount      int          `toml:"sh_count"`
	Data         string       `toml:"data"`
	Positions    [][3]float32 `toml:"positions"`
}

// ProbeRecordSize returns the payload bytes per probe: RayNum surfels followed by the sky-visibility SH.
//
// Returns:
//   - int: bytes per probe
func (h AssetHeader) ProbeRecordSize() int {
	return h.RayNum*h.SurfelStride + h.SHCount*4
}

func (h AssetHeader) validate() error {
	if h.Version != AssetVersion {
		return fmt.Errorf("unsupported asset version %d", h.Version)
	}
	if h.RayNum != gi.RayNum || h.SurfelStride != gi.SurfelStride || h.SHCount != gi.SHCount {
		return fmt.Errorf("asset layout %d x %d bytes + %d floats does not match %d x %d bytes + %d floats",
			h.RayNum, h.SurfelStride, h.SHCount, gi.RayNum, gi.SurfelStride, gi.SHCount)
	}
	if len(h.Positions) != h.ProbeCount {
		return fmt.Errorf("asset lists %d positions for %d probes", len(h.Positions), h.ProbeCount)
	}
	return nil
}

// Asset is a probe volume on disk: a TOML header and a little-endian binary payload.
type Asset struct {
	path string
}

// NewAsset references an asset at path without touching the disk.
//
// Parameters:
//   - path: the header path, conventionally ending in .toml
//
// Returns:
//   - *Asset: the asset
func NewAsset(path string) *Asset {
	return &Asset{path: path}
}

// Path returns the header path.
//
// Returns:
//   - string: the path
func (a *Asset) Path() string {
	return a.path
}

// DataPath returns the payload path: the header path with a .bin extension.
//
// Returns:
//   - string: the path
func (a *Asset) DataPath() string {
	return strings.TrimSuffix(a.path, filepath.Ext(a.path)) + ".bin"
}

// Exists reports whether the header file exists.
//
// Returns:
//   - bool: true if the header is on disk
func (a *Asset) Exists() bool {
	_, err := os.Stat(a.path)
	return err == nil
}

// ReadHeader parses and validates the header.
//
// Returns:
//   - AssetHeader: the header
//   - error: if the file cannot be read, parsed or fails validation
func (a *Asset) ReadHeader() (AssetHeader, error) {
	var h AssetHeader
	data, err := os.ReadFile(a.path)
	if err != nil {
		return h, fmt.Errorf("failed to read asset header: %w", err)
	}
	if err := toml.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("failed to parse asset header %s: %w", a.path, err)
	}
	if err := h.validate(); err != nil {
		return h, fmt.Errorf("invalid asset %s: %w", a.path, err)
	}
	return h, nil
}

// Read returns the header and the payload. The payload is empty for an unbaked asset.
//
// Returns:
//   - AssetHeader: the header
//   - []byte: the payload
//   - error: if either file cannot be read or the payload size is wrong
func (a *Asset) Read() (AssetHeader, []byte, error) {
	h, err := a.ReadHeader()
	if err != nil {
		return h, nil, err
	}
	if !h.Baked {
		return h, nil, nil
	}
	payload, err := os.ReadFile(filepath.Join(filepath.Dir(a.path), h.Data))
	if err != nil {
		return h, nil, fmt.Errorf("failed to read asset payload: %w", err)
	}
	if want := h.ProbeCount * h.ProbeRecordSize(); len(payload) != want {
		return h, nil, fmt.Errorf("asset payload is %d bytes, want %d", len(payload), want)
	}
	return h, payload, nil
}

// Write stores the payload and then the header, creating the directory if needed.
// Version, layout and Data fields of h are filled in.
//
// Parameters:
//   - h: the header
//   - payload: the payload, empty for an unbaked asset
//
// Returns:
//   - error: if a file cannot be written
func (a *Asset) Write(h AssetHeader, payload []byte) error {
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return fmt.Errorf("failed to create asset directory: %w", err)
	}
	h.Version = AssetVersion
	h.RayNum = gi.RayNum
	h.SurfelStride = gi.SurfelStride
	h.SHCount = gi.SHCount
	h.Data = filepath.Base(a.DataPath())

	if err := os.WriteFile(a.DataPath(), payload, 0o644); err != nil {
		return fmt.Errorf("failed to write asset payload: %w", err)
	}
	data, err := toml.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to encode asset header: %w", err)
	}
	if err := os.WriteFile(a.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write asset header: %w", err)
	}
	common.Logger().Debug("probe asset written", "path", a.path, "bytes", len(payload))
	return nil
}
