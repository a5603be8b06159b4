// Package ioutils holds small file-opening helpers shared by the format
// readers and writers.
package ioutils

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
)

// OpenMaybeCompressed opens path for reading, transparently unwrapping gzip
// (detected by .gz extension or magic bytes).
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	magic, _ := br.Peek(2)
	gz := filepath.Ext(path) == ".gz" || (len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b)
	if !gz {
		return &wrappedCloser{Reader: br, close: f.Close}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &wrappedCloser{Reader: zr, close: func() error {
		_ = zr.Close()
		return f.Close()
	}}, nil
}

// CreateMaybeCompressed creates path for writing, gzip-compressing when the
// path ends in .gz.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(f)
	if filepath.Ext(path) != ".gz" {
		return &wrappedWriter{Writer: bw, close: func() error {
			if err := bw.Flush(); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		}}, nil
	}
	zw := gzip.NewWriter(bw)
	return &wrappedWriter{Writer: zw, close: func() error {
		if err := zw.Close(); err != nil {
			_ = f.Close()
			return err
		}
		if err := bw.Flush(); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}}, nil
}

type wrappedCloser struct {
	io.Reader
	close func() error
}

func (w *wrappedCloser) Close() error { return w.close() }

type wrappedWriter struct {
	io.Writer
	close func() error
}

func (w *wrappedWriter) Close() error { return w.close() }
