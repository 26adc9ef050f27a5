// internal/ua/ua.go
//
// Cadastro – User-Agent of the browser filling the registration form.
//
// Context
// -------
// requestinfo.Enrich calls Parse once per request.  The layout writes
// Device into the body's data-device attribute, and cadastro.css stacks
// the form buttons on phones and tablets from it.  Crawlers get a noindex
// meta tag through the isBot helper.  The "form action" log line for
// submits and deletes carries Summary under the "ua" key.
//
// Only this file imports `github.com/avct/uasurfer`; callers see Info.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package ua

import (
	"fmt"
	"strconv"
	"strings"

	surfer "github.com/avct/uasurfer"
)

// Info is the parsed User-Agent of one form request.
//
// Example (Chrome on macOS):
//
//	Browser   "Chrome"
//	Version   "125.0.6422"
//	OS        "MacOSX"
//	OSVersion "14.4"
//	Device    "Desktop"
//	Platform  "Mac"
//	IsBot     false
//	Raw       "Mozilla/5.0 (Macintosh;…"
//
// Device will be one of: "Desktop", "Mobile", "Tablet", "Bot", or "Other".
type Info struct {
	Browser   string
	Version   string
	OS        string
	OSVersion string
	Device    string
	Platform  string
	IsBot     bool
	Raw       string
}

// Parse converts a raw header into an Info struct.
func Parse(raw string) Info {
	u := surfer.Parse(raw)

	info := Info{
		Browser:   strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:   versionToString(u.Browser.Version),
		OS:        strings.TrimPrefix(u.OS.Name.String(), "OS"),
		OSVersion: versionToString(u.OS.Version),
		Platform:  strings.TrimPrefix(u.OS.Platform.String(), "Platform"),
		IsBot:     u.IsBot(),
		Raw:       raw,
	}

	switch {
	case info.IsBot:
		info.Device = "Bot"
	case u.DeviceType == surfer.DeviceComputer:
		info.Device = "Desktop"
	case u.DeviceType == surfer.DeviceTablet:
		info.Device = "Tablet"
	case u.DeviceType == surfer.DevicePhone, u.DeviceType == surfer.DeviceWearable:
		info.Device = "Mobile"
	default:
		info.Device = "Other"
	}

	return info
}

// Summary renders Info as one short log value, e.g.
// "Chrome 125.0.6422 / MacOSX 14.4 / Desktop".  Empty parts are dropped.
func (i Info) Summary() string {
	parts := make([]string, 0, 3)
	if b := strings.TrimSpace(i.Browser + " " + i.Version); b != "" && i.Browser != "Unknown" {
		parts = append(parts, b)
	}
	if o := strings.TrimSpace(i.OS + " " + i.OSVersion); o != "" && i.OS != "Unknown" {
		parts = append(parts, o)
	}
	if i.Device != "" {
		parts = append(parts, i.Device)
	}
	return strings.Join(parts, " / ")
}

// versionToString renders a semantic version in dotted form while trimming
// trailing zeros, e.g. 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionToString(v surfer.Version) string {
	if v.Major == 0 && v.Minor == 0 && v.Patch == 0 {
		return ""
	}
	if v.Patch != 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	if v.Minor != 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return strconv.Itoa(int(v.Major))
}
