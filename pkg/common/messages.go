package common

import (
	"fmt"
	"log"
)

// Global variable to control debug output
var VerboseMode bool = false

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
}

// Error messages
const (
	ErrFailedToLoadTree          = "failed to load virtual tree"
	ErrFailedToWriteImage        = "failed to write disc image"
	ErrFailedToReadImage         = "failed to read disc image"
	ErrFailedToExportTree        = "failed to export virtual tree"
	ErrFailedToCreateOutputFile  = "failed to create output file"
	ErrFailedToCloseOutputFile   = "failed to close output file"
	ErrFailedToOpenInputFile     = "failed to open input file"
	ErrFailedToWriteReport       = "failed to write layout report"
	ErrFailedToLoadConfig        = "failed to load configuration"
	ErrInvalidAlignmentValue     = "alignment must be a power of two"
	ErrFailedToWriteFSTTable     = "failed to write FST table"
	ErrFailedToPatchHeaderFields = "failed to patch header fields"
)

// Info messages
const (
	InfoImageWritten    = "Disc image written: %s (%d bytes)"
	InfoTreeExported    = "Virtual tree exported to: %s"
	InfoTreeLoaded      = "Loaded virtual tree from %s: %d entries"
	InfoImageRead       = "Read disc image %s: %d FST entries"
	InfoReportWritten   = "Layout report written to: %s"
	InfoConfigLoaded    = "Loaded configuration from: %s"
	InfoReservedSkipped = "Reserved directory %s not present, skipping"
)

// Debug messages
const (
	DebugHeaderPlaced     = "Header: %d bytes at 0x0"
	DebugLoaderPlaced     = "AppLoader: %d bytes at 0x%X"
	DebugDOLPlaced        = "DOL %s: %d bytes at 0x%X"
	DebugFSTReserved      = "FST: %d bytes reserved at 0x%X"
	DebugFilePlaced       = "File %s: %d bytes at 0x%X"
	DebugDirectoryEntered = "Directory %s: entry %d, parent %d"
	DebugDirectoryClosed  = "Directory %s: next index %d"
	DebugFSTWritten       = "FST: %d entries, %d name bytes"
	DebugHeaderPatched    = "Header patched at 0x%X: dol=0x%X fst=0x%X fstLen=%d"
	DebugReservedFile     = "Extracting %s/%s -> %s"
	DebugMirroredFile     = "Mirroring %s (%d bytes)"
)

// Warning messages
const (
	WarnNameBankNearLimit = "Name bank is %d bytes, close to the 16-bit offset limit"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[INFO] "+message, args...)
	} else {
		log.Printf("[INFO] %s", message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[WARN] "+message, args...)
	} else {
		log.Printf("[WARN] %s", message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[ERROR] "+message, args...)
	} else {
		log.Printf("[ERROR] %s", message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}
	if len(args) > 0 {
		log.Printf("[DEBUG] "+message, args...)
	} else {
		log.Printf("[DEBUG] %s", message)
	}
}

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}

// FormatErrorString creates a formatted error with string details
func FormatErrorString(baseMessage, details string, args ...interface{}) error {
	if len(args) > 0 {
		return fmt.Errorf("%s: "+details, append([]interface{}{baseMessage}, args...)...)
	}
	return fmt.Errorf("%s: %s", baseMessage, details)
}
