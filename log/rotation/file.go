// Package rotation writes size-bounded log and trace files.
//
// Instruction traces of long-running scripts grow quickly; a File
// keeps at most a fixed number of older generations on disk.
package rotation

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"sync"
)

// A File is a log file with associated rotation files.
// The rotation files are named after the base file
// with a numeric suffix: base.1, base.2, and so on.
// Calls to Write write data to the base file.
// When the base file reaches the given size,
// it is renamed to base.1
// (and base.1 is renamed to base.2, and so on)
// and a new base file is opened for subsequent writes.
//
// Only whole lines are written to disk; a trailing partial
// line is held until its newline arrives or Close is called.
// Errors encountered while renaming files are ignored.
type File struct {
	mu   sync.Mutex
	base string
	size int64 // max bytes in the base file
	n    int   // number of rotated generations kept
	buf  []byte
	f    *os.File
	w    int64 // bytes written to f
}

// Create returns a File writing to name, appending to it if it
// already exists, and keeping up to n rotated generations.
// Values of n below 1 are taken as 1.
func Create(name string, size, n int) *File {
	if n < 1 {
		n = 1
	}
	return &File{
		base: name,
		size: int64(size),
		n:    n,
	}
}

var dropmsg = []byte("\nlog write error; some data dropped\n")

// Write writes p to the log file f.
func (f *File) Write(p []byte) (n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.buf = append(f.buf, p...)
	n = len(p)
	if i := bytes.LastIndexByte(f.buf, '\n'); i >= 0 {
		_, err = f.write(f.buf[:i+1])
		// The payload is discarded even on failure so that
		// an unopenable file cannot grow memory without bound.
		f.buf = f.buf[i+1:]
		if err != nil {
			f.buf = append(dropmsg, f.buf...)
		}
	}
	return
}

// Close flushes any partial line and closes the base file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.buf) > 0 {
		f.write(append(f.buf, '\n'))
		f.buf = nil
	}
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	return err
}

func (f *File) write(p []byte) (int, error) {
	if f.f != nil && f.w+int64(len(p)) > f.size {
		f.rotate()
		f.f.Close()
		f.f = nil
		f.w = 0
	}
	if f.f == nil {
		var err error
		f.f, err = os.OpenFile(f.base, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644) // #nosec
		if err != nil {
			return 0, err
		}
		f.w, err = f.f.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, err
		}
	}
	n, err := f.f.Write(p)
	f.w += int64(n)
	return n, err
}

func (f *File) rotate() {
	for i := f.n - 1; i > 0; i-- {
		os.Rename(f.name(i), f.name(i+1))
	}
	os.Rename(f.base, f.name(1))
}

func (f *File) name(i int) string {
	return f.base + "." + strconv.Itoa(i)
}
