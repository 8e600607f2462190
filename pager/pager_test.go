package pager

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.db")

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if p.NumPages() != 0 {
		t.Errorf("NumPages() = %d; want 0", p.NumPages())
	}
}

func TestOpenRejectsCorruptLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.db")

	if err := os.WriteFile(path, make([]byte, 100), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Open(path)
	if err == nil {
		t.Fatalf("Open: expected error for non-page-aligned file")
	}
	if !IsFatal(err) {
		t.Errorf("Open: expected FatalError, got %T: %v", err, err)
	}
}

func TestGetPageOutOfBounds(t *testing.T) {
	dir := t.TempDir()
	p, err := Open(filepath.Join(dir, "oob.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if _, err := p.GetPage(TableMaxPages + 1); err == nil {
		t.Errorf("GetPage(%d): expected error", TableMaxPages+1)
	} else if !IsFatal(err) {
		t.Errorf("GetPage(%d): expected FatalError, got %T", TableMaxPages+1, err)
	}
}

func TestAllocateAndFlushPage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alloc.db")
	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	n := p.AllocatePage()
	if n != 0 {
		t.Errorf("AllocatePage() = %d; want 0", n)
	}

	pg, err := p.GetPage(n)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	pg.Data[0] = 0xAB
	pg.Data[PageSize-1] = 0xCD

	if err := p.Flush(n); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != PageSize {
		t.Fatalf("len(data) = %d; want %d", len(data), PageSize)
	}
	if data[0] != 0xAB || data[PageSize-1] != 0xCD {
		t.Errorf("flushed bytes = 0x%X..0x%X; want 0xAB..0xCD", data[0], data[PageSize-1])
	}
}

func TestFlushUnloadedPageIsFatal(t *testing.T) {
	dir := t.TempDir()
	p, err := Open(filepath.Join(dir, "flush.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if err := p.Flush(5); err == nil || !IsFatal(err) {
		t.Errorf("Flush of unloaded page: expected FatalError, got %v", err)
	}
}

func TestLoadExistingPage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.db")

	buf := make([]byte, PageSize)
	for i := range buf {
		buf[i] = 0x01
	}
	if err := os.WriteFile(path, buf, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if p.NumPages() != 1 {
		t.Errorf("NumPages() = %d; want 1", p.NumPages())
	}

	pg, err := p.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if pg.Data[0] != 0x01 || pg.Data[PageSize-1] != 0x01 {
		t.Errorf("unexpected data: first=0x%X last=0x%X", pg.Data[0], pg.Data[PageSize-1])
	}
}

func TestGetPageAfterAllocateReturnsSameInstance(t *testing.T) {
	dir := t.TempDir()
	p, err := Open(filepath.Join(dir, "same.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	n := p.AllocatePage()
	first, err := p.GetPage(n)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	second, err := p.GetPage(n)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if first != second {
		t.Errorf("GetPage returned distinct instances for the same page number")
	}
}

func TestCloseFlushesAllOccupiedSlots(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "closeall.db")
	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for i := 0; i < 3; i++ {
		n := p.AllocatePage()
		pg, err := p.GetPage(n)
		if err != nil {
			t.Fatalf("GetPage: %v", err)
		}
		pg.Data[0] = byte(n + 1)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != 3*PageSize {
		t.Fatalf("len(data) = %d; want %d", len(data), 3*PageSize)
	}
	for i := 0; i < 3; i++ {
		if got := data[i*PageSize]; got != byte(i+1) {
			t.Errorf("page %d first byte = %d; want %d", i, got, i+1)
		}
	}
}
