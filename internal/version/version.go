// ABOUTME: Version information for volumekit
// ABOUTME: Product identity reported by the CLI, remote status, and mDNS TXT records
package version

// Version is overridden at build time with -ldflags "-X ...version.Version=v1.2.3"
var Version = "0.1.0"

const (
	Product      = "volplay"
	Manufacturer = "Resonate Protocol"
)

// String returns "product version"
func String() string {
	return Product + " " + Version
}
