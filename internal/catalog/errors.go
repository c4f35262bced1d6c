package catalog

import "errors"

// ErrMalformedSource marks source data that was readable but did not match the
// expected shape (missing columns, unparseable rows, schema violations).
var ErrMalformedSource = errors.New("malformed source data")
