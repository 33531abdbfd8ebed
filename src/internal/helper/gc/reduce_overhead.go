// Copyright (c) 2024 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

// Buffer defines the interface for a reusable byte buffer.
// It abstracts the [bytebufferpool.ByteBuffer] type to avoid direct dependencies.
type Buffer interface {
	io.Writer
	WriteString(s string) (int, error)
	WriteByte(c byte) error
	WriteTo(w io.Writer) (int64, error)
	ReadFrom(r io.Reader) (int64, error)
	Bytes() []byte
	String() string
	Len() int
	Reset()
}

// Pool defines the interface for buffer pooling.
// It abstracts the [bytebufferpool.Pool] type to avoid direct dependencies.
//
// Pool implementations must be safe for concurrent use by multiple goroutines.
type Pool interface {
	Get() Buffer
	Put(b Buffer)
}

// pool wraps [bytebufferpool.Pool] to implement Pool interface.
type pool struct{ p *bytebufferpool.Pool }

// Get returns a buffer from the pool.
func (p *pool) Get() Buffer { return p.p.Get() }

// Put returns a buffer to the pool. Buffers that did not come from a
// bytebufferpool are dropped.
func (p *pool) Put(b Buffer) {
	if buf, ok := b.(*bytebufferpool.ByteBuffer); ok {
		p.p.Put(buf)
	}
}

// New returns an independent Pool. Most callers should use [Default].
func New() Pool { return &pool{p: &bytebufferpool.Pool{}} }

// Default is the process-wide buffer pool.
//
// It backs the rendering of temporary SAN extension configs and the
// formatting of log lines, both of which are short-lived and repeated on
// every poll cycle.
//
// Example usage for rendering a file before writing it:
//
//	buf := gc.Default.Get()
//	defer func() {
//		buf.Reset()         // Reset the buffer to prevent data leaks
//		gc.Default.Put(buf) // Return the buffer to the pool for reuse
//	}()
//
//	if _, err := buf.ReadFrom(base); err != nil {
//		return fmt.Errorf("read base config: %w", err)
//	}
//	buf.WriteString("\n[SAN]\n")
//
//	return os.WriteFile(path, buf.Bytes(), 0o644)
var Default Pool = New()

// With runs fn with a buffer from the Default pool and returns the buffer
// to the pool afterwards. The buffer must not be retained by fn.
func With(fn func(Buffer) error) error {
	buf := Default.Get()
	defer func() {
		buf.Reset()
		Default.Put(buf)
	}()
	return fn(buf)
}
