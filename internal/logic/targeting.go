package logic

import (
	"net"
	"net/http"
	"strings"

	"github.com/avct/uasurfer"

	"github.com/opencms/sectionbanner/internal/geoip"
)

// VisitorInfo holds facts about the requesting client used only for
// analytics enrichment. Banner selection never depends on it.
type VisitorInfo struct {
	DeviceType string
	IsBot      bool
	Country    string
}

// ResolveVisitor derives device type, bot flag and country from the HTTP
// request. geoIP may be nil; the country then stays empty.
func ResolveVisitor(geoIP *geoip.GeoIP, r *http.Request) VisitorInfo {
	var info VisitorInfo

	if ua := r.Header.Get("User-Agent"); ua != "" {
		u := uasurfer.Parse(ua)
		switch u.DeviceType {
		case uasurfer.DeviceComputer:
			info.DeviceType = "desktop"
		case uasurfer.DevicePhone:
			info.DeviceType = "mobile"
		case uasurfer.DeviceTablet:
			info.DeviceType = "tablet"
		default:
			info.DeviceType = "other"
		}
		info.IsBot = u.IsBot()
	}

	if geoIP != nil {
		if ip := net.ParseIP(clientIP(r)); ip != nil {
			info.Country = geoIP.Country(ip)
		}
	}

	return info
}

// clientIP extracts the originating IP, honoring X-Forwarded-For set by
// proxies in front of the CMS.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx != -1 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
