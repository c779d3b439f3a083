package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector detects the platform of the running process.
type RealDetector struct {
	goos   string
	goarch string
	lookup func(ctx context.Context) (platform, family, version string, err error)
}

// NewDetector returns a detector backed by the Go runtime and gopsutil.
func NewDetector() *RealDetector {
	return &RealDetector{
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
		lookup: host.PlatformInformationWithContext,
	}
}

// Detect fills OS and architecture from the runtime. On Linux it asks
// gopsutil for distribution details. When that lookup fails the
// distribution fields stay empty, unless ctx was cancelled.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:      d.goos,
		Arch:    normalizeArch(d.goarch),
		ArchRaw: d.goarch,
	}

	if d.goos != "linux" {
		return info, nil
	}

	distro, family, version, err := d.lookup(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}

	if distro = normalize(distro); distro != "" {
		info.Distro = distro
		info.Family = mapFamily(family, distro)
		info.Version = normalize(version)
	}
	return info, nil
}
