package chat

import (
	"bytes"
	"io"
	"strings"
)

const (
	framePrefix  = "data: "
	doneSentinel = "[DONE]"
	frameDelim   = "\n\n"
)

// frameReader turns a raw byte stream into a sequence of frame payloads.
// It carries a byte buffer across reads, so frames and multi-byte UTF-8
// sequences may be split arbitrarily across chunks: the buffer is only
// converted to text at frame boundaries.
type frameReader struct {
	r     io.Reader
	buf   []byte
	chunk []byte
	eof   bool
}

func newFrameReader(r io.Reader) *frameReader {
	return &frameReader{
		r:     r,
		chunk: make([]byte, 4096),
	}
}

// Next returns the payload of the next eligible frame. It returns io.EOF
// once the stream is exhausted, either via the [DONE] sentinel or because
// the transport ended without one.
func (f *frameReader) Next() (string, error) {
	for {
		// Drain complete frames already buffered before reading more.
		for {
			idx := bytes.Index(f.buf, []byte(frameDelim))
			if idx < 0 {
				break
			}
			frame := string(f.buf[:idx])
			f.buf = f.buf[idx+len(frameDelim):]

			payload, ok := framePayload(frame)
			if !ok {
				// Keep-alive or comment frame
				continue
			}
			if payload == doneSentinel {
				return "", io.EOF
			}
			return payload, nil
		}

		if f.eof {
			// The transport ended without a closing sentinel; treat any
			// trailing partial frame as the last one.
			frame := string(f.buf)
			f.buf = nil
			if payload, ok := framePayload(frame); ok && payload != doneSentinel {
				return payload, nil
			}
			return "", io.EOF
		}

		n, err := f.r.Read(f.chunk)
		if n > 0 {
			f.buf = append(f.buf, f.chunk[:n]...)
		}
		if err != nil {
			if err != io.EOF {
				return "", err
			}
			f.eof = true
		}
	}
}

// framePayload extracts the data payload from one frame. Frames without a
// "data: "-prefixed line carry no payload (blank or keep-alive lines) and
// are dropped.
func framePayload(frame string) (string, bool) {
	for _, line := range strings.Split(frame, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(line, framePrefix) {
			return strings.TrimPrefix(line, framePrefix), true
		}
	}
	return "", false
}
