package version

import (
	"fmt"
	"strings"
)

const (
	appMajor uint = 0
	appMinor uint = 1
	appPatch uint = 0
)

// appBuild is build metadata appended to the version. It can be set with
// '-ldflags "-X github.com/cellnetwork/celld/version.appBuild=foo"' and
// is dropped unless it is made of alphanumerics and dashes.
var appBuild string

var version = formatVersion(appMajor, appMinor, appPatch, appBuild)

// Version returns the application version as a properly formed string
func Version() string {
	return version
}

func formatVersion(major, minor, patch uint, build string) string {
	formatted := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if isValidBuild(build) {
		formatted += "-" + build
	}
	return formatted
}

func isValidBuild(build string) bool {
	if build == "" {
		return false
	}
	return strings.IndexFunc(build, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '-')
	}) == -1
}
