package io

import (
	"errors"
	"os"

	"golang.org/x/exp/mmap"
)

// ErrTruncated is returned by Refresh when the file shrank
var ErrTruncated = errors.New("file truncated")

// MappedFile provides memory-mapped read access to a file
type MappedFile struct {
	reader *mmap.ReaderAt
	size   int64
	path   string
}

// OpenMapped opens a file with memory mapping
func OpenMapped(path string) (*MappedFile, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	return &MappedFile{
		reader: reader,
		size:   int64(reader.Len()),
		path:   path,
	}, nil
}

// ReadFile maps path and returns its whole content
func ReadFile(path string) (string, error) {
	m, err := OpenMapped(path)
	if err != nil {
		return "", err
	}
	defer m.Close()

	data, err := m.ReadRange(0, m.Size())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Size returns the file size
func (m *MappedFile) Size() int64 {
	return m.size
}

// Path returns the file path
func (m *MappedFile) Path() string {
	return m.path
}

// Close closes the memory mapping
func (m *MappedFile) Close() error {
	return m.reader.Close()
}

// Refresh re-maps the file if it has grown and returns the size it had
// before. A file that shrank is re-mapped too and reported as ErrTruncated
// so the caller can start over from offset zero.
func (m *MappedFile) Refresh() (int64, error) {
	prev := m.size
	info, err := os.Stat(m.path)
	if err != nil {
		return prev, err
	}

	newSize := info.Size()
	if newSize == prev {
		return prev, nil
	}

	// Size changed, re-open it
	m.reader.Close()
	reader, err := mmap.Open(m.path)
	if err != nil {
		return prev, err
	}
	m.reader = reader
	m.size = int64(reader.Len())

	if m.size < prev {
		return prev, ErrTruncated
	}
	return prev, nil
}

// ReadRange reads bytes from start to end
func (m *MappedFile) ReadRange(start, end int64) ([]byte, error) {
	if end > m.size {
		end = m.size
	}
	if start >= end {
		return nil, nil
	}

	buf := make([]byte, end-start)
	_, err := m.reader.ReadAt(buf, start)
	if err != nil {
		return nil, err
	}
	return buf, nil
}
