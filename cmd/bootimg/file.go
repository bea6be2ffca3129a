package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"

	"bootimg"
)

// mappedImage is a read-only view of an image file.
type mappedImage struct {
	Data []byte

	fd   *os.File
	fmap mmap.MMap
}

func openImage(path string) (*mappedImage, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := fd.Stat()
	if err != nil {
		fd.Close()
		return nil, err
	}
	if st.Size() < bootimg.HeaderSize {
		fd.Close()
		return nil, &bootimg.FormatError{Reason: fmt.Sprintf("%s: %d bytes is shorter than the %d byte header", path, st.Size(), bootimg.HeaderSize)}
	}
	fmap, err := mmap.Map(fd, mmap.RDONLY, 0)
	if err != nil {
		fd.Close()
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	return &mappedImage{Data: fmap, fd: fd, fmap: fmap}, nil
}

func (m *mappedImage) Close() error {
	err := m.fmap.Unmap()
	if cerr := m.fd.Close(); err == nil {
		err = cerr
	}
	return err
}

// atomicFile writes to a temporary file next to the destination and only
// moves it into place on Close. Abort drops everything written so far.
type atomicFile struct {
	*os.File
	path string
	done bool
}

func createAtomic(path string) (*atomicFile, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, err
	}
	return &atomicFile{File: tmp, path: path}, nil
}

func (f *atomicFile) Close() error {
	if f.done {
		return nil
	}
	f.done = true
	if err := f.File.Close(); err != nil {
		os.Remove(f.File.Name())
		return err
	}
	if err := os.Chmod(f.File.Name(), 0644); err != nil {
		os.Remove(f.File.Name())
		return err
	}
	if err := os.Rename(f.File.Name(), f.path); err != nil {
		os.Remove(f.File.Name())
		return err
	}
	return nil
}

func (f *atomicFile) Abort() {
	if f.done {
		return
	}
	f.done = true
	f.File.Close()
	os.Remove(f.File.Name())
}
