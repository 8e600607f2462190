// Package pager implements the fixed-size page cache that backs the
// on-disk B+tree: it owns the file descriptor, lazily reads pages on
// first access, and flushes dirty pages on shutdown.
package pager

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	// PageSize is the fixed size of every page in the file, header included.
	PageSize = 4096

	// TableMaxPages bounds how many page slots the pager will ever hand
	// out in one process lifetime. There is no free list, so a table
	// that needs more pages than this is permanently full.
	TableMaxPages = 100
)

// Page is one fixed-size page slot, shared by every borrower of that
// page number: the btree package mutates Data in place and relies on
// Close to persist whatever is there, dirty or not.
type Page struct {
	Data [PageSize]byte
}

// Pager owns the database file and the page cache above it. Pages are
// addressed by page number; slot n is empty (nil) until the first
// GetPage(n).
type Pager struct {
	file     *os.File
	pages    [TableMaxPages]*Page
	numPages uint32
}

// Open opens path read/write, creating it (mode 0600) if absent, and
// computes the known page count from the file length. A file whose
// length isn't a whole multiple of PageSize is corrupt and is reported
// as a FatalError rather than silently truncated or rounded.
func Open(path string) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "pager: open")
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "pager: stat")
	}
	length := fi.Size()
	if length%PageSize != 0 {
		f.Close()
		return nil, NewFatalError("db file is not a whole number of pages, corrupt file")
	}
	return &Pager{
		file:     f,
		numPages: uint32(length / PageSize),
	}, nil
}

// NumPages reports how many page numbers are known to the pager, i.e.
// the high-water mark of pages read from disk or allocated.
func (p *Pager) NumPages() uint32 { return p.numPages }

// GetPage returns the buffer for page n, reading it from disk into a
// fresh zeroed buffer on first access. A short read (page n lies past
// the current end of file) leaves the buffer's tail zeroed, which is
// exactly right for a page that has never been written.
func (p *Pager) GetPage(n uint32) (*Page, error) {
	if n >= TableMaxPages {
		return nil, NewFatalError("page number %d out of bounds (max %d)", n, TableMaxPages)
	}
	if p.pages[n] == nil {
		pg := &Page{}
		if n <= p.fileLengthInPages() {
			if _, err := p.file.Seek(int64(n)*PageSize, io.SeekStart); err != nil {
				return nil, errors.Wrapf(err, "pager: seek page %d", n)
			}
			if _, err := io.ReadFull(p.file, pg.Data[:]); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
				return nil, errors.Wrapf(err, "pager: read page %d", n)
			}
		}
		p.pages[n] = pg
		if n >= p.numPages {
			p.numPages = n + 1
		}
	}
	return p.pages[n], nil
}

func (p *Pager) fileLengthInPages() uint32 {
	fi, err := p.file.Stat()
	if err != nil {
		return 0
	}
	return uint32((fi.Size() + PageSize - 1) / PageSize)
}

// AllocatePage reserves the next page number. The page itself is only
// materialized by the following GetPage on that number — there is no
// free list, so allocation never reuses a number.
func (p *Pager) AllocatePage() uint32 {
	return p.numPages
}

// Flush writes slot n's buffer back to disk. Flushing an empty slot is
// an invariant violation, not a recoverable error: nothing should ever
// ask to flush a page it never touched.
func (p *Pager) Flush(n uint32) error {
	pg := p.pages[n]
	if pg == nil {
		return NewFatalError("flush: page %d was never loaded", n)
	}
	if _, err := p.file.Seek(int64(n)*PageSize, io.SeekStart); err != nil {
		return errors.Wrapf(err, "pager: seek page %d for flush", n)
	}
	if _, err := p.file.Write(pg.Data[:]); err != nil {
		return errors.Wrapf(err, "pager: write page %d", n)
	}
	return nil
}

// Close flushes every occupied slot below numPages and closes the file.
// Pages beyond numPages that were never touched are never written.
func (p *Pager) Close() error {
	for n := uint32(0); n < p.numPages; n++ {
		if p.pages[n] == nil {
			continue
		}
		if err := p.Flush(n); err != nil {
			return err
		}
	}
	return errors.Wrap(p.file.Close(), "pager: close")
}
