package overlay

import (
	"bytes"
	"errors"
	"io"
)

func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}

// isEOF reports an empty document, which decodes to the zero File.
func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
