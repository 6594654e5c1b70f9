package download

import "errors"

// Release-level failures.
var (
	ErrNoFreeDownload = errors.New("no free download available")
	ErrEmailRejected  = errors.New("email download request rejected")
	ErrEmailTimeout   = errors.New("download email not received, increase the email timeout")
)

// Per-format skips, collected in DownloadOutcome.Skipped.
var (
	ErrFormatNotFound = errors.New("format not offered")
	ErrFormatErrored  = errors.New("format errored")
)
