package platform

import "strings"

var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian,
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
}

func normalizeArch(arch string) string {
	switch arch {
	case "amd64", "x86_64", "x64":
		return "amd64"
	case "arm64", "aarch64":
		return "arm64"
	}
	return arch
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// mapFamily prefers the family gopsutil reports and falls back to the
// distribution ID, since gopsutil leaves the family empty for some distros
// (Alpine among them).
func mapFamily(family, distro string) string {
	if canonical, ok := familyMap[normalize(family)]; ok {
		return canonical
	}
	if canonical, ok := familyMap[distro]; ok {
		return canonical
	}
	return FamilyUnknown
}
