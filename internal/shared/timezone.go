package shared

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/thlib/go-timezone-local/tzlocal"
)

const zoneinfoMarker = "zoneinfo/"

var (
	lookupTZ = func() (string, bool) { return os.LookupEnv("TZ") }
	systemTZ = tzlocal.LocalTZ
)

// LocalTimezone resolves the IANA name of the runtime's local time zone.
//
// The TZ environment variable wins when it names a loadable zone. Otherwise the host setting is read through
// [tzlocal.LocalTZ] (/etc/localtime, /etc/timezone, timedatectl, the macOS and Windows system settings).
// Falls back to "UTC".
func LocalTimezone() string {
	if tz, ok := lookupTZ(); ok {
		if name := loadableZone(strings.TrimPrefix(tz, ":")); name != "" {
			return name
		}
	}

	if tz, err := systemTZ(); err == nil {
		if name := loadableZone(tz); name != "" {
			return name
		}
	}

	return "UTC"
}

// loadableZone normalizes s to a zone name and returns it only if [time.LoadLocation] accepts it.
//
// POSIX rule strings such as "EST5EDT,M3.2.0,M11.1.0" are rejected.
func loadableZone(s string) string {
	name := zoneName(s)
	if name == "" || name == "Local" {
		return ""
	}
	if _, err := time.LoadLocation(name); err != nil {
		return ""
	}
	return name
}

// zoneName extracts a zone name from either a bare name or a zoneinfo path.
func zoneName(s string) string {
	s = filepath.ToSlash(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if idx := strings.LastIndex(s, zoneinfoMarker); idx >= 0 {
		return s[idx+len(zoneinfoMarker):]
	}
	if strings.HasPrefix(s, "/") {
		return ""
	}
	return s
}
