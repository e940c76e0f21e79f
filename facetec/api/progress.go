package api

import (
	"bytes"
	"io"
)

// ProgressFunc receives upload progress as a non-decreasing stream of
// (bytesSent, totalBytes) pairs, ending with bytesSent == totalBytes.
type ProgressFunc func(bytesSent, totalBytes int64)

// progressReader reports how much of the request body the transport has
// consumed. Reads happen on the transport goroutine, so the callback must be
// cheap and non-blocking.
type progressReader struct {
	reader   io.Reader
	total    int64
	sent     int64
	progress ProgressFunc
}

func newProgressReader(payload []byte, progress ProgressFunc) *progressReader {
	return &progressReader{
		reader:   bytes.NewReader(payload),
		total:    int64(len(payload)),
		progress: progress,
	}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.reader.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.progress != nil {
			p.progress(p.sent, p.total)
		}
	}
	return n, err
}
