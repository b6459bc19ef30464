package big

import "errors"

var (
	ErrNotFound        = errors.New("file does not exist")
	ErrExists          = errors.New("file already exists")
	ErrInvalidName     = errors.New("invalid file name")
	ErrInvalidMagic    = errors.New("invalid archive magic: expected a BIG header")
	ErrTruncatedHeader = errors.New("truncated archive header")
	ErrTruncatedIndex  = errors.New("truncated archive index")
	ErrTruncatedName   = errors.New("truncated entry name")
	ErrTooLarge        = errors.New("archive exceeds the maximum BIG size")
)
