// Package platform detects the operating system, CPU architecture and Linux
// distribution cyrene runs on. Plugins receive this as a read-only table so
// they can pick the right release asset without touching the environment.
package platform

import "context"

// Linux distribution families.
const (
	FamilyDebian  = "debian"
	FamilyRHEL    = "rhel"
	FamilyFedora  = "fedora"
	FamilySUSE    = "suse"
	FamilyArch    = "arch"
	FamilyAlpine  = "alpine"
	FamilyUnknown = "unknown"
)

// ArchStyle selects how an architecture is spelled in release asset names.
type ArchStyle int

const (
	// ArchGo spells architectures the way GOARCH does: amd64, arm64.
	ArchGo ArchStyle = iota
	// ArchGNU uses uname-style names: x86_64, aarch64.
	ArchGNU
	// ArchNode uses the names found in Node.js and many JS tool releases: x64, arm64.
	ArchNode
)

// Info describes the host platform.
type Info struct {
	OS      string // "linux", "darwin", "windows"
	Arch    string // normalized: "amd64", "arm64", or GOARCH when unknown
	ArchRaw string // GOARCH as reported by the runtime
	Distro  string // distribution ID on Linux, e.g. "ubuntu"
	Family  string // canonical family on Linux, e.g. "debian"
	Version string // distribution version on Linux, e.g. "24.04"
}

func (i *Info) IsLinux() bool   { return i.OS == "linux" }
func (i *Info) IsMacOS() bool   { return i.OS == "darwin" }
func (i *Info) IsWindows() bool { return i.OS == "windows" }
func (i *Info) IsAMD64() bool   { return i.Arch == "amd64" }
func (i *Info) IsARM64() bool   { return i.Arch == "arm64" }

// IsMusl reports whether the host is a musl-based Linux, where glibc
// builds will not run.
func (i *Info) IsMusl() bool {
	return i.IsLinux() && i.Family == FamilyAlpine
}

// ArchAs spells the architecture in the given style. Architectures without
// a known alias are returned unchanged.
func (i *Info) ArchAs(style ArchStyle) string {
	switch style {
	case ArchGNU:
		switch i.Arch {
		case "amd64":
			return "x86_64"
		case "arm64":
			return "aarch64"
		}
	case ArchNode:
		if i.Arch == "amd64" {
			return "x64"
		}
	}
	return i.Arch
}

// Key returns "<os>_<arch>", the lookup key plugins use to map platforms to
// asset names.
func (i *Info) Key() string {
	return i.OS + "_" + i.Arch
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// Static is a Detector that always returns the same Info.
type Static Info

func (s Static) Detect(context.Context) (*Info, error) {
	info := Info(s)
	return &info, nil
}
