package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	goos   string
	goarch string
}

// NewDetector creates a detector for the running host.
func NewDetector() Detector {
	return &RealDetector{goos: runtime.GOOS, goarch: runtime.GOARCH}
}

// Detect maps the host OS and architecture to release index names.
//
// An unsupported OS or architecture is not an error: the matching field is
// left empty so the caller can insist on an explicit flag. Failure to read
// Linux distribution details is ignored unless ctx was cancelled.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OSRaw:   d.goos,
		ArchRaw: d.goarch,
	}

	if arch, err := normalizeArch(d.goarch); err == nil {
		info.Arch = arch
	}

	if os, err := normalizeOS(d.goos); err == nil {
		info.OS = os
	}

	if runtime.GOOS == "linux" && d.goos == runtime.GOOS {
		platform, family, version, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			return info, nil
		}

		platform = normalizePlatform(platform)
		if platform != "" {
			info.Platform = platform
			info.Family = mapFamily(family)
			info.Version = normalizePlatform(version)
		}
	}

	return info, nil
}
