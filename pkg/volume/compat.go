// ABOUTME: Static capability queries
// ABOUTME: Platform snapshots that do not depend on a controller instance
package volume

import "github.com/Resonate-Protocol/volumekit/pkg/platform"

// Compatibility is a snapshot of platform volume capabilities
type Compatibility struct {
	IsIOS                  bool   `json:"isIOS" yaml:"isIOS"`
	WebAudioSupported      bool   `json:"webAudioSupported" yaml:"webAudioSupported"`
	VolumeControlSupported bool   `json:"volumeControlSupported" yaml:"volumeControlSupported"`
	AudioContextState      string `json:"audioContextState" yaml:"audioContextState"`
}

// IsWebAudioSupported reports whether p can construct a processing graph
func IsWebAudioSupported(p platform.Provider) bool {
	return p.SupportsGraphAPI()
}

// IsIOS reports whether p identifies as an iOS device
func IsIOS(p platform.Provider) bool {
	return p.IsIOSLike()
}

// CompatibilityInfo aggregates the capability queries of p
func CompatibilityInfo(p platform.Provider) Compatibility {
	graphAPI := IsWebAudioSupported(p)

	// The context state only counts the unprefixed constructor
	standard := graphAPI
	if sp, ok := p.(platform.StandardGraphAPI); ok {
		standard = sp.SupportsStandardGraphAPI()
	}

	state := "unavailable"
	if standard {
		state = "available"
	}

	return Compatibility{
		IsIOS:                  IsIOS(p),
		WebAudioSupported:      graphAPI,
		VolumeControlSupported: p.ProbeVolumeWritability(),
		AudioContextState:      state,
	}
}
