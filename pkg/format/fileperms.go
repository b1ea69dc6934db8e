package format

import "io/fs"

// Common file permission constants used throughout the application.
// These constants provide named values for file and directory permissions
// instead of using magic numbers.
const (
	// DirUserGroupRead is for directories that should be readable by owner and group (rwxr-x---)
	DirUserGroupRead fs.FileMode = 0750

	// FilePublicRead is for files that should be world-readable (rw-r--r--)
	// Used for generated documentation and other public files
	FilePublicRead fs.FileMode = 0644

	// FileUserReadWrite is for files that should only be readable by owner (rw-------)
	// Used for downloaded DICOM data, report text and configuration
	FileUserReadWrite fs.FileMode = 0600
)
