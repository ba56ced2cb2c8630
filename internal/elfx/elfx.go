// Package elfx provides helpers for opening ELF binaries, locating the
// executable section, and mapping virtual addresses to bytes. The lift
// command uses it to feed machine code and symbol names into the
// decoder.
package elfx

import (
	"debug/elf"
	"fmt"
	"os"
	"sort"
	"syscall"
)

type Image struct {
	Path  string
	File  *elf.File
	All   []byte
	Loads []Seg
	Text  Section
	Syms  []Sym
	f     *os.File
}

type Seg struct {
	Vaddr, Off, Filesz uint64
	Flags              elf.ProgFlag
}

type Section struct {
	Name          string
	VA, Off, Size uint64
}

// Sym is a function or object symbol, sorted by address.
type Sym struct {
	Name string
	Addr uint64
	Size uint64
}

func Open(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open elf: %w", err)
	}

	of, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open file: %w", err)
	}

	fi, err := of.Stat()
	if err != nil {
		of.Close()
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	all, err := syscall.Mmap(int(of.Fd()), 0, int(fi.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		of.Close()
		f.Close()
		return nil, fmt.Errorf("mmap file: %w", err)
	}

	im := &Image{Path: path, File: f, All: all, f: of}
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		im.Loads = append(im.Loads, Seg{
			Vaddr:  uint64(p.Vaddr),
			Off:    uint64(p.Off),
			Filesz: uint64(p.Filesz),
			Flags:  p.Flags,
		})
	}

	if s := f.Section(".text"); s != nil {
		im.Text = Section{s.Name, s.Addr, s.Offset, s.Size}
	}
	// Fallback if stripped: first executable load segment.
	if im.Text.Size == 0 {
		for _, l := range im.Loads {
			if l.Flags&elf.PF_X != 0 && l.Filesz > 0 {
				im.Text = Section{"LOAD(exec)", l.Vaddr, l.Off, l.Filesz}
				break
			}
		}
	}

	im.loadSymbols()
	return im, nil
}

// Close unmaps the memory and closes the underlying files.
func (im *Image) Close() error {
	var err1, err2 error
	if im.All != nil {
		err1 = syscall.Munmap(im.All)
		im.All = nil
	}
	if im.f != nil {
		err2 = im.f.Close()
		im.f = nil
	}
	if im.File != nil {
		err3 := im.File.Close()
		if err3 != nil && err2 == nil {
			err2 = err3
		}
		im.File = nil
	}
	if err1 != nil {
		return err1
	}
	return err2
}

// VA2Off translates a virtual address into a file offset using PT_LOAD
// segments. It returns false if VA is unmapped.
func (im *Image) VA2Off(va uint64) (uint64, bool) {
	for _, l := range im.Loads {
		if va >= l.Vaddr && va < l.Vaddr+l.Filesz {
			return l.Off + (va - l.Vaddr), true
		}
	}
	return 0, false
}

// SliceVA returns a subslice of the mapped file for the virtual address
// range [va, va+size). It returns (nil, false) if the VA is unmapped or
// the range is out of bounds.
func (im *Image) SliceVA(va uint64, size uint64) ([]byte, bool) {
	off, ok := im.VA2Off(va)
	if !ok {
		return nil, false
	}
	if size == 0 {
		return []byte{}, true
	}
	end := off + size
	if end > uint64(len(im.All)) {
		return nil, false
	}
	return im.All[off:end], true
}

// TextBytes returns the bytes of the executable section.
func (im *Image) TextBytes() ([]byte, bool) {
	if im.Text.Size == 0 {
		return nil, false
	}
	end := im.Text.Off + im.Text.Size
	if end > uint64(len(im.All)) {
		return nil, false
	}
	return im.All[im.Text.Off:end], true
}

// SymAt returns the symbol covering va, if any.
func (im *Image) SymAt(va uint64) (Sym, bool) {
	i := sort.Search(len(im.Syms), func(i int) bool {
		return im.Syms[i].Addr > va
	})
	if i == 0 {
		return Sym{}, false
	}
	s := im.Syms[i-1]
	if s.Size > 0 && va >= s.Addr+s.Size {
		return Sym{}, false
	}
	return s, true
}

// loadSymbols merges static and dynamic symbols into one sorted table.
func (im *Image) loadSymbols() {
	if im.File == nil {
		return
	}
	add := func(syms []elf.Symbol, err error) {
		if err != nil {
			return
		}
		for _, s := range syms {
			if s.Name == "" || s.Value == 0 {
				continue
			}
			im.Syms = append(im.Syms, Sym{Name: s.Name, Addr: s.Value, Size: s.Size})
		}
	}
	add(im.File.Symbols())
	add(im.File.DynamicSymbols())
	sort.Slice(im.Syms, func(a, b int) bool {
		return im.Syms[a].Addr < im.Syms[b].Addr
	})
}
