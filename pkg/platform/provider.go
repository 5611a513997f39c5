// ABOUTME: Capability provider interface
// ABOUTME: Graph API availability, iOS detection, and volume writability probing
package platform

import (
	"strings"

	"github.com/Resonate-Protocol/volumekit/pkg/graph"
)

// Provider reports platform capabilities and constructs processing graphs
type Provider interface {
	// SupportsGraphAPI reports whether a processing graph can be constructed
	SupportsGraphAPI() bool

	// IsIOSLike reports whether the platform identifies as an iOS device
	IsIOSLike() bool

	// ProbeVolumeWritability reports whether a throwaway media element
	// exposes a defined volume property
	ProbeVolumeWritability() bool

	// NewGraphContext constructs a new processing context
	NewGraphContext() (graph.Context, error)
}

// StandardGraphAPI is implemented by providers that can tell the standard
// graph constructor apart from a vendor-prefixed one
type StandardGraphAPI interface {
	SupportsStandardGraphAPI() bool
}

var iosMarkers = []string{"iPad", "iPhone", "iPod"}

// IsIOSUserAgent matches a user agent string against iOS device markers.
// MSStream is an old IE11 quirk that also contains "iPhone"; it is excluded.
func IsIOSUserAgent(ua string) bool {
	if strings.Contains(ua, "MSStream") {
		return false
	}
	for _, m := range iosMarkers {
		if strings.Contains(ua, m) {
			return true
		}
	}
	return false
}
