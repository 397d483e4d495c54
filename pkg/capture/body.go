package capture

import (
	"bytes"
	"fmt"
	"io"
)

// ReadBody drains body into memory and closes it.
//
// A nil body and http.NoBody both yield an empty, non-nil buffer. A read
// error from the underlying stream is returned wrapped; the caller decides
// how to surface it.
func ReadBody(body io.ReadCloser) ([]byte, error) {
	if body == nil {
		return []byte{}, nil
	}
	defer body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	if buf.Len() == 0 {
		return []byte{}, nil
	}

	return buf.Bytes(), nil
}
