package consts

import (
	"strings"

	"github.com/carlmjohnson/versioninfo"
)

var devmode string = "false"

func IsDevMode() bool {
	return strings.ToLower(devmode) == "true"
}

// Version identifies the build, from the VCS information embedded by the Go toolchain
func Version() string {
	return versioninfo.Short()
}
