package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damillora/cyrene/internal/platform"
)

func TestPlatformTable(t *testing.T) {
	info := &platform.Info{OS: "linux", Arch: "arm64", ArchRaw: "arm64", Distro: "alpine", Family: platform.FamilyAlpine, Version: "3.20"}
	h := loadTest(t, `
function get_versions()
  return {
    platform.os,
    platform.arch,
    platform.key,
    platform.arch_as("gnu"),
    platform.arch_as("node"),
    platform.pick({ linux_arm64 = "musl-arm", linux = "linux" }),
    platform.pick({ linux = "linux-any" }),
    tostring(platform.pick({ darwin = "mac" })),
    tostring(platform.is_musl),
    platform.distro.id,
  }
end
`, Capabilities{Platform: info})

	// Bypass sorting by reading the raw list through the call helper.
	ret, err := h.call(context.Background(), EntryGetVersions, "", nil)
	require.NoError(t, err)
	got, err := stringList(ret)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"linux", "arm64", "linux_arm64", "aarch64", "arm64",
		"musl-arm", "linux-any", "nil", "true", "alpine",
	}, got)
}

func TestPlatformTable_NoDistroOffLinux(t *testing.T) {
	h := loadTest(t, `function get_versions() return { tostring(platform.distro) } end`,
		Capabilities{Platform: &platform.Info{OS: "darwin", Arch: "arm64"}})

	got, err := h.GetVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"nil"}, got)
}

func TestPlatformTable_UnknownArchStyle(t *testing.T) {
	h := loadTest(t, `function get_versions() return { platform.arch_as("weird") } end`, Capabilities{})

	_, err := h.GetVersions(context.Background())
	assert.Error(t, err)
}
