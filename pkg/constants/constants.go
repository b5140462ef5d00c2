// Package constants provides shared constants used throughout the dotsect codebase.
// This includes the marker grammar, metafile conventions, file permissions, and
// other values that should be consistent across the application.
package constants

// Marker grammar constants define the in-band comment syntax.
const (
	// MarkerSentinel introduces a dotsect marker after the comment prefix
	MarkerSentinel = "..."

	// AllSection is the reserved section name for file-level markers
	AllSection = "all"

	// DefaultCommentPrefix is used when no prefix can be detected
	DefaultCommentPrefix = "#"
)

// Metafile constants define the sidecar file conventions.
const (
	// MetafileSuffix is appended to a parent file name to form its sidecar path
	MetafileSuffix = ".imosid.toml"

	// MetafileSyntaxVersion is the sidecar schema version written to new metafiles
	MetafileSyntaxVersion = 0
)

// Permission constants define the target-permission encoding.
//
// The stored permission value is combined with PermissionOffset and the result
// is interpreted as octal before being applied to the target file. The encoding
// is preserved bit-for-bit for compatibility with existing consumers.
const (
	// PermissionOffset is added to the stored permission value before octal conversion
	PermissionOffset = 1000000

	// PermissionArgumentPrefixLen is the fixed-width prefix stripped from the
	// permission marker argument before integer parsing
	PermissionArgumentPrefixLen = 3
)

// File permission constants define standard Unix file permissions.
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Path constants.
const (
	// DefaultConfigName is the base name of the user config file (without extension)
	DefaultConfigName = ".dotsect"

	// GitDirectory is the VCS internal directory skipped during traversal
	GitDirectory = ".git"
)
