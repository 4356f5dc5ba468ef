package workspace

import "errors"

var (
	// ErrProjectNotFound indicates no directory matched the project identifier.
	ErrProjectNotFound = errors.New("project not found")
	// ErrPathForbidden indicates a path resolved outside its project root.
	ErrPathForbidden = errors.New("path outside project directory")
	// ErrFileNotFound indicates the addressed file or directory does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrInvalidPattern indicates a regular expression that failed to compile.
	ErrInvalidPattern = errors.New("invalid regex")
	// ErrUnsupportedArchive indicates an archive suffix with no registered extractor.
	ErrUnsupportedArchive = errors.New("unsupported archive format")
	// ErrExtractionFailed indicates a corrupt or unreadable archive.
	ErrExtractionFailed = errors.New("archive extraction failed")
)
