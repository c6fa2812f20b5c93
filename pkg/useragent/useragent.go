// Package useragent derives browser, operating system and device type from a
// User-Agent header.
package useragent

import (
	"strings"

	"github.com/mssola/useragent"
)

const (
	Unknown = "Unknown"

	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
)

// Info is the parsed form of a User-Agent header.
type Info struct {
	Browser    string
	OS         string
	DeviceType string
}

// Parse never fails: unrecognized parts are reported as Unknown and the
// device type defaults to desktop.
func Parse(header string) Info {
	info := Info{
		Browser:    Unknown,
		OS:         Unknown,
		DeviceType: DeviceDesktop,
	}

	header = strings.TrimSpace(header)
	if header == "" {
		return info
	}

	ua := useragent.New(header)

	if name, _ := ua.Browser(); name != "" {
		info.Browser = name
	}
	if name := ua.OSInfo().Name; name != "" {
		info.OS = name
	}

	switch {
	case ua.Bot():
		info.DeviceType = DeviceBot
	case isTablet(header):
		info.DeviceType = DeviceTablet
	case ua.Mobile():
		info.DeviceType = DeviceMobile
	}

	return info
}

func isTablet(header string) bool {
	h := strings.ToLower(header)
	if strings.Contains(h, "ipad") || strings.Contains(h, "tablet") {
		return true
	}
	// Android tablets omit the "Mobile" token.
	return strings.Contains(h, "android") && !strings.Contains(h, "mobile")
}
