package tailer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// maxLineLength bounds the partial-line buffer. Longer lines are split.
const maxLineLength = 1 << 20

// headLength is how much of the file start is kept to recognize rewrites.
const headLength = 64

// lineReader reads complete lines from a file that keeps growing.
type lineReader struct {
	fs      afero.Fs
	path    string
	file    afero.File
	info    os.FileInfo
	reader  *bufio.Reader
	offset  int64
	pending []byte
	head    []byte
}

func openLineReader(fs afero.Fs, path string, fromEnd bool) (*lineReader, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}

	head, err := readHead(file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	var offset int64
	if fromEnd {
		offset, err = file.Seek(0, io.SeekEnd)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("seek log file: %w", err)
		}
	}

	return &lineReader{
		fs:     fs,
		path:   path,
		file:   file,
		info:   info,
		reader: bufio.NewReader(file),
		offset: offset,
		head:   head,
	}, nil
}

// ReadLine returns the next complete line without its terminator.
// io.EOF means no complete line is available yet; a trailing partial line
// stays buffered until its newline arrives.
func (reader *lineReader) ReadLine() (string, error) {
	data, err := reader.reader.ReadBytes('\n')
	reader.offset += int64(len(data))
	reader.pending = append(reader.pending, data...)

	if err != nil {
		if errors.Is(err, io.EOF) && len(reader.pending) >= maxLineLength {
			return reader.takePending(), nil
		}
		return "", err
	}
	return reader.takePending(), nil
}

// Sync follows truncation and rotation of the path once the current handle
// is drained. A path that is missing mid-rotation is not an error.
func (reader *lineReader) Sync() (string, error) {
	current, err := reader.fs.Stat(reader.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat log file: %w", err)
	}

	if !sameFile(reader.info, current) {
		if err := reader.reopen(); err != nil {
			return "", err
		}
		return "rotated", nil
	}

	rewritten := current.Size() < reader.offset
	if !rewritten {
		same, err := reader.sameHead()
		if err != nil {
			return "", err
		}
		rewritten = !same
	}
	if rewritten {
		if _, err := reader.file.Seek(0, io.SeekStart); err != nil {
			return "", fmt.Errorf("rewind truncated log file: %w", err)
		}
		reader.reader.Reset(reader.file)
		reader.offset = 0
		reader.pending = reader.pending[:0]
		if reader.head, err = readHead(reader.file); err != nil {
			return "", err
		}
		return "truncated", nil
	}
	return "", nil
}

// sameHead reports whether the file still starts with the bytes seen so
// far. It catches a truncate followed by regrowth past the old offset
// within one poll. A rewrite with an identical start is not detected.
func (reader *lineReader) sameHead() (bool, error) {
	current, err := readHead(reader.file)
	if err != nil {
		return false, err
	}
	if len(current) < len(reader.head) || !bytes.Equal(current[:len(reader.head)], reader.head) {
		return false, nil
	}
	reader.head = current
	return true, nil
}

func readHead(file afero.File) ([]byte, error) {
	head := make([]byte, headLength)
	n, err := file.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read log file head: %w", err)
	}
	return head[:n], nil
}

func (reader *lineReader) Close() error {
	if reader == nil || reader.file == nil {
		return nil
	}
	return reader.file.Close()
}

func (reader *lineReader) reopen() error {
	next, err := openLineReader(reader.fs, reader.path, false)
	if err != nil {
		return err
	}
	_ = reader.file.Close()
	*reader = *next
	return nil
}

func (reader *lineReader) takePending() string {
	line := strings.TrimRight(string(reader.pending), "\r\n")
	reader.pending = reader.pending[:0]
	return line
}

// sameFile compares file identity when the filesystem exposes it.
// In-memory filesystems carry no identity, so they never report rotation.
func sameFile(previous, current os.FileInfo) bool {
	if previous.Sys() == nil || current.Sys() == nil {
		return true
	}
	return os.SameFile(previous, current)
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
