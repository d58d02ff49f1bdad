package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/config"
	"github.com/Carmen-Shannon/oxy-gi/engine/gi"
)

type volume struct {
	mu         sync.RWMutex
	name       string
	positions  []common.Vec3
	resolution uint32
	asset      *Asset
	bakedAt    time.Time
	surfels    [][gi.RayNum]gi.Surfel
	sky        []gi.SHCoefficients
}

// Volume is a set of GI probes with its baked surfels and sky visibility.
// It bakes itself through a gi.ProbeBaker and is persisted through an Asset.
type Volume interface {
	gi.Volume

	// Positions returns a copy of the probe positions in bake order.
	//
	// Returns:
	//   - []common.Vec3: the positions
	Positions() []common.Vec3

	// ProbeCount returns the number of probes.
	//
	// Returns:
	//   - int: the probe count
	ProbeCount() int

	// Asset returns the backing asset.
	//
	// Returns:
	//   - *Asset: the asset, or nil
	Asset() *Asset

	// Baked reports whether the volume holds data for every probe.
	//
	// Returns:
	//   - bool: true after a successful bake or reload of a baked asset
	Baked() bool

	// BakedAt returns when the held data was baked.
	//
	// Returns:
	//   - time.Time: the bake time, zero if not baked
	BakedAt() time.Time

	// Surfels returns the surfels of one probe.
	//
	// Parameters:
	//   - probe: the probe index
	//
	// Returns:
	//   - []gi.Surfel: RayNum surfels, or nil if not baked or out of range
	Surfels(probe int) []gi.Surfel

	// SkyVisibility returns the sky-visibility SH of one probe.
	//
	// Parameters:
	//   - probe: the probe index
	//
	// Returns:
	//   - gi.SHCoefficients: the coefficients
	//   - bool: false if not baked or out of range
	SkyVisibility(probe int) (gi.SHCoefficients, bool)

	// AttachAsset sets the backing asset without reading or writing it.
	//
	// Parameters:
	//   - asset: the asset, or nil to detach
	AttachAsset(asset *Asset)
}

var _ Volume = &volume{}

// NewVolume creates an unbaked volume with probes placed by layout.
//
// Parameters:
//   - name: the volume name, also the asset file stem
//   - layout: places the probes
//   - options: builder options
//
// Returns:
//   - Volume: the volume
func NewVolume(name string, layout Layout, options ...VolumeBuilderOption) Volume {
	v := &volume{
		name:       name,
		positions:  layout.Positions(),
		resolution: config.DefaultCubeResolution,
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

func (v *volume) Name() string {
	return v.name
}

func (v *volume) Resolution() uint32 {
	return v.resolution
}

func (v *volume) Positions() []common.Vec3 {
	out := make([]common.Vec3, len(v.positions))
	copy(out, v.positions)
	return out
}

func (v *volume) ProbeCount() int {
	return len(v.positions)
}

func (v *volume) Bake(ctx context.Context, baker gi.ProbeBaker) error {
	n := len(v.positions)
	surfels := make([][gi.RayNum]gi.Surfel, n)
	sky := make([]gi.SHCoefficients, n)

	for i, pos := range v.positions {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := baker.SampleSurfels(pos)
		if err != nil {
			return fmt.Errorf("probe %d: %w", i, err)
		}
		sh, err := baker.SampleRadiance(pos)
		if err != nil {
			return fmt.Errorf("probe %d: %w", i, err)
		}
		surfels[i], sky[i] = s, sh
		baker.ReportProgress(fmt.Sprintf("%s: probe %d/%d", v.name, i+1, n), float32(i+1)/float32(n))
	}

	v.mu.Lock()
	v.surfels, v.sky = surfels, sky
	v.bakedAt = time.Now().UTC()
	v.mu.Unlock()
	common.Logger().Debug("probe volume baked", "volume", v.name, "probes", n)
	return nil
}

func (v *volume) HasAsset() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.asset != nil
}

func (v *volume) Asset() *Asset {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.asset
}

func (v *volume) AttachAsset(asset *Asset) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.asset = asset
}

func (v *volume) CreateAsset(path string) error {
	v.AttachAsset(NewAsset(path))
	return v.Persist()
}

func (v *volume) Baked() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.surfels != nil
}

func (v *volume) BakedAt() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.bakedAt
}

func (v *volume) Surfels(probe int) []gi.Surfel {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if probe < 0 || probe >= len(v.surfels) {
		return nil
	}
	out := make([]gi.Surfel, gi.RayNum)
	copy(out, v.surfels[probe][:])
	return out
}

func (v *volume) SkyVisibility(probe int) (gi.SHCoefficients, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if probe < 0 || probe >= len(v.sky) {
		return gi.SHCoefficients{}, false
	}
	return v.sky[probe], true
}

func (v *volume) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.surfels, v.sky = nil, nil
	v.bakedAt = time.Time{}
}

func (v *volume) Persist() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.asset == nil {
		return ErrNoAsset
	}

	h := AssetHeader{
		Name:       v.name,
		Baked:      v.surfels != nil,
		BakedAt:    v.bakedAt,
		Resolution: v.resolution,
		ProbeCount: len(v.positions),
		Positions:  make([][3]float32, len(v.positions)),
	}
	for i, p := range v.positions {
		h.Positions[i] = [3]float32(p)
	}

	var payload []byte
	if h.Baked {
		record := gi.RayNum*gi.SurfelStride + gi.SHCount*4
		payload = make([]byte, 0, record*len(v.positions))
		for i := range v.surfels {
			payload = append(payload, gi.MarshalSurfels(v.surfels[i][:])...)
			payload = append(payload, v.sky[i].Marshal()...)
		}
	}
	return v.asset.Write(h, payload)
}

func (v *volume) Reload() error {
	asset := v.Asset()
	if asset == nil {
		return ErrNoAsset
	}
	h, payload, err := asset.Read()
	if err != nil {
		return err
	}
	if h.ProbeCount != len(v.positions) {
		return fmt.Errorf("asset %s has %d probes, volume %s has %d", asset.Path(), h.ProbeCount, v.name, len(v.positions))
	}

	if !h.Baked {
		v.Clear()
		return nil
	}

	surfels := make([][gi.RayNum]gi.Surfel, h.ProbeCount)
	sky := make([]gi.SHCoefficients, h.ProbeCount)
	record := h.ProbeRecordSize()
	surfelBytes := gi.RayNum * gi.SurfelStride
	for i := range h.ProbeCount {
		chunk := payload[i*record : (i+1)*record]
		if surfels[i], err = gi.UnmarshalSurfels(chunk[:surfelBytes]); err != nil {
			return fmt.Errorf("probe %d: %w", i, err)
		}
		if sky[i], err = gi.UnmarshalSHCoefficients(chunk[surfelBytes:]); err != nil {
			return fmt.Errorf("probe %d: %w", i, err)
		}
	}

	v.mu.Lock()
	v.surfels, v.sky = surfels, sky
	v.bakedAt = h.BakedAt
	v.mu.Unlock()
	return nil
}
