// Package fileio is the engine's file collaborator: offset-addressed
// whole-buffer reads and writes plus size and basename queries, backed
// by the standard library's os package and surfacing failures through
// the errcode file taxonomy (open/seek/short-read/short-write). The
// SPIR-V shader paths named in pipeline configs are the one on-disk
// input the core itself consumes through this interface.
package fileio

import (
	"io"
	"os"
	"path/filepath"

	"github.com/andewx/vkforge/errcode"
)

// Read fills buf from path starting at offset. It is a short-read error
// if fewer than len(buf) bytes are available past offset.
func Read(path string, buf []byte, offset int64) error {
	f, err := os.Open(path)
	if err != nil {
		return errcode.New(errcode.FileOpenFail, err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return errcode.New(errcode.FileSeekFail, err)
	}
	if _, err := io.ReadFull(f, buf); err != nil {
		return errcode.New(errcode.FileShortRead, err)
	}
	return nil
}

// ReadAll returns path's entire contents from offset to EOF.
func ReadAll(path string, offset int64) ([]byte, error) {
	size, err := Size(path)
	if err != nil {
		return nil, err
	}
	if offset > size {
		return nil, errcode.New(errcode.FileSeekFail, nil)
	}
	buf := make([]byte, size-offset)
	if err := Read(path, buf, offset); err != nil {
		return nil, err
	}
	return buf, nil
}

// Write writes buf into path at offset, creating the file if needed.
// Existing bytes outside [offset, offset+len(buf)) are preserved.
func Write(path string, buf []byte, offset int64) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errcode.New(errcode.FileOpenFail, err)
	}
	defer f.Close()

	n, err := f.WriteAt(buf, offset)
	if err != nil || n < len(buf) {
		return errcode.New(errcode.FileShortWrite, err)
	}
	return nil
}

// Size returns path's length in bytes.
func Size(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, errcode.New(errcode.FileOpenFail, err)
	}
	return fi.Size(), nil
}

// Basename returns the final element of path, extension included.
func Basename(path string) string { return filepath.Base(path) }
