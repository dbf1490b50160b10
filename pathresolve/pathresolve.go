// Package pathresolve walks a slash-separated path against an arbitrary
// tree of directory handles, folding "." and ".." and following symlinks up
// to a bounded depth. It has no dependency on the udf package: callers
// supply the tree-walking primitives (IterateDir, ReadSymlink, IsDir) and
// get back the opaque handle the path names.
package pathresolve

import (
	"fmt"
	"strings"
)

// ExpectedType constrains what kind of node Resolve must land on.
type ExpectedType int

const (
	ExpectAny ExpectedType = iota
	ExpectFile
	ExpectDir
)

// Entry is one directory entry as the caller's tree exposes it.
type Entry struct {
	Name      string
	IsDir     bool
	IsSymlink bool
	IsParent  bool
	Handle    any
}

// IterateDirFunc lists the entries of a directory handle.
type IterateDirFunc func(dir any) ([]Entry, error)

// ReadSymlinkFunc returns the textual target of a symlink handle.
type ReadSymlinkFunc func(symlink any) (string, error)

// IsDirFunc reports whether a handle is a directory.
type IsDirFunc func(handle any) bool

const defaultMaxSymlinkDepth = 16

// Resolver walks paths against a caller-supplied tree.
type Resolver struct {
	Root            any
	IterateDir      IterateDirFunc
	ReadSymlink     ReadSymlinkFunc
	IsDir           IsDirFunc
	MaxSymlinkDepth int
}

// New builds a Resolver rooted at root, with the default symlink-depth
// limit of 16 (spec.md §4.12's PathResolver collaborator).
func New(root any, iterateDir IterateDirFunc, readSymlink ReadSymlinkFunc, isDir IsDirFunc) *Resolver {
	return &Resolver{
		Root:            root,
		IterateDir:      iterateDir,
		ReadSymlink:     readSymlink,
		IsDir:           isDir,
		MaxSymlinkDepth: defaultMaxSymlinkDepth,
	}
}

// Resolve walks path from the resolver's root, folding "." and "..",
// following symlinks, and returning the handle the path names.
func (r *Resolver) Resolve(path string, expect ExpectedType) (any, error) {
	handle, err := r.resolveFrom(r.Root, tokenize(path), 0)
	if err != nil {
		return nil, err
	}
	if err := r.checkType(handle, expect); err != nil {
		return nil, err
	}
	return handle, nil
}

func tokenize(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." {
			continue
		}
		out = append(out, seg)
	}
	return out
}

func (r *Resolver) resolveFrom(start any, tokens []string, depth int) (any, error) {
	cur := start
	for _, tok := range tokens {
		entries, err := r.IterateDir(cur)
		if err != nil {
			return nil, fmt.Errorf("pathresolve: listing directory: %w", err)
		}

		var match *Entry
		if tok == ".." {
			for i := range entries {
				if entries[i].IsParent {
					match = &entries[i]
					break
				}
			}
			if match == nil {
				return nil, fmt.Errorf("pathresolve: no parent entry available")
			}
		} else {
			for i := range entries {
				if strings.EqualFold(entries[i].Name, tok) && !entries[i].IsParent {
					match = &entries[i]
					break
				}
			}
			if match == nil {
				return nil, fmt.Errorf("pathresolve: %q: %w", tok, errNotFound)
			}
		}

		if match.IsSymlink {
			next, err := r.followSymlink(cur, *match, depth)
			if err != nil {
				return nil, err
			}
			cur = next
			continue
		}
		cur = match.Handle
	}
	return cur, nil
}

var errNotFound = fmt.Errorf("not found")

func (r *Resolver) followSymlink(dir any, entry Entry, depth int) (any, error) {
	if depth >= r.MaxSymlinkDepth {
		return nil, fmt.Errorf("pathresolve: symlink depth exceeded %d", r.MaxSymlinkDepth)
	}
	target, err := r.ReadSymlink(entry.Handle)
	if err != nil {
		return nil, fmt.Errorf("pathresolve: reading symlink %q: %w", entry.Name, err)
	}

	base := dir
	if strings.HasPrefix(target, "/") {
		base = r.Root
	}
	return r.resolveFrom(base, tokenize(target), depth+1)
}

func (r *Resolver) checkType(handle any, expect ExpectedType) error {
	if expect == ExpectAny || r.IsDir == nil {
		return nil
	}
	isDir := r.IsDir(handle)
	switch expect {
	case ExpectDir:
		if !isDir {
			return fmt.Errorf("pathresolve: expected a directory")
		}
	case ExpectFile:
		if isDir {
			return fmt.Errorf("pathresolve: expected a file")
		}
	}
	return nil
}
