package lod

// Version is the current version of lod
const Version = "0.3.0"

// VersionInfo contains detailed version information
type VersionInfo struct {
	// Version is the semantic version
	Version string
	// ConfigFormat names the configuration file format
	ConfigFormat string
}

// GetVersion returns the current version information
func GetVersion() VersionInfo {
	return VersionInfo{
		Version:      Version,
		ConfigFormat: "toml",
	}
}
