// Package pool manages the candidate tracks of a mix and the policies that
// pick which of them are used.
package pool

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"

	"hdxmix/internal/mixerr"
)

// Pool is the set of eligible source files in one directory. Entries are
// keyed by base filename, so names are unique.
type Pool struct {
	root  string
	exts  []string
	names []string // sorted
}

// Scan lists the regular files in dir whose extension is one of exts
// (case-insensitive). An empty result is mixerr.ErrEmptyPool; the pool is
// still returned so external files can be added to it.
func Scan(dir string, exts []string) (*Pool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan pool: %w", err)
	}
	p := &Pool{root: dir, exts: normalizeExts(exts)}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if p.eligible(e.Name()) {
			p.names = append(p.names, e.Name())
		}
	}
	slices.Sort(p.names)
	if len(p.names) == 0 {
		return p, fmt.Errorf("%w: %s (extensions %s)", mixerr.ErrEmptyPool, dir, strings.Join(p.exts, ", "))
	}
	return p, nil
}

func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

func (p *Pool) eligible(name string) bool {
	return slices.Contains(p.exts, strings.ToLower(filepath.Ext(name)))
}

// Root is the pool directory.
func (p *Pool) Root() string { return p.root }

// Len is the number of tracks in the pool.
func (p *Pool) Len() int { return len(p.names) }

// Names returns the track names in lexical order.
func (p *Pool) Names() []string { return slices.Clone(p.names) }

// Contains reports whether name is a pool entry.
func (p *Pool) Contains(name string) bool {
	_, ok := slices.BinarySearch(p.names, name)
	return ok
}

// Path returns the file path of a pool entry.
func (p *Pool) Path(name string) string { return filepath.Join(p.root, name) }

func (p *Pool) insert(name string) {
	i, ok := slices.BinarySearch(p.names, name)
	if !ok {
		p.names = slices.Insert(p.names, i, name)
	}
}

// AddExternal brings a file from outside the pool into it, keeping its base
// filename. A file already inside the pool root is only registered. When the
// name is taken the copy is skipped, the existing file is left untouched and
// a NameCollision warning is returned.
func (p *Pool) AddExternal(path string) (*mixerr.Warning, error) {
	name := filepath.Base(path)
	if !p.eligible(name) {
		return nil, fmt.Errorf("add %s: %w (pool accepts %s)", name, mixerr.ErrUnsupportedFormat, strings.Join(p.exts, ", "))
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("add %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("add %s: not a regular file", name)
	}

	if sameDir(filepath.Dir(path), p.root) {
		p.insert(name)
		return nil, nil
	}

	dest := p.Path(name)
	if _, err := os.Stat(dest); err == nil {
		p.insert(name)
		same, herr := sameContent(path, dest)
		switch {
		case herr != nil:
			w := mixerr.Warnf(mixerr.NameCollision, "%s already exists in pool, keeping existing file", name)
			return &w, nil
		case same:
			w := mixerr.Warnf(mixerr.NameCollision, "%s already exists in pool with identical content", name)
			return &w, nil
		default:
			w := mixerr.Warnf(mixerr.NameCollision, "%s already exists in pool with different content, keeping existing file", name)
			return &w, nil
		}
	}

	if err := copyFile(path, dest); err != nil {
		return nil, fmt.Errorf("add %s: %w", name, err)
	}
	p.insert(name)
	return nil, nil
}

func sameDir(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}

func digest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	h, _ := blake2b.New256(nil)
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

func sameContent(a, b string) (bool, error) {
	da, err := digest(a)
	if err != nil {
		return false, err
	}
	db, err := digest(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(da, db), nil
}

// copyFile writes through a temporary file renamed into place.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".import-*")
	if err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
