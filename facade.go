package udf

import "github.com/s0up4200/goudf/pathresolve"

// Provenance reports diagnostic detail about the last ICB this Volume
// loaded: where on disk it came from and what kind of descriptor it was.
// Replaces the original driver's global g_last_* diagnostic state
// (spec.md §9) with a value held on the Volume, overwritten by every ICB
// load and read back through Volume.Provenance.
type Provenance struct {
	ICBSector   uint32
	ICBTagIdent uint16
}

// Provenance returns diagnostic detail for the most recently loaded ICB.
func (v *Volume) Provenance() Provenance {
	return Provenance{ICBSector: v.lastICBSector, ICBTagIdent: v.lastICBTagIdent}
}

// Root loads the volume's root directory node.
func (v *Volume) Root() (*Node, error) {
	return v.loadICB(v.RootICB)
}

// Dir lists the directory named by a slash-separated path rooted at the
// volume root, resolving "." / ".." and symlinks along the way.
func (v *Volume) Dir(path string) ([]DirEntry, error) {
	node, err := v.resolvePath(path, pathresolve.ExpectDir)
	if err != nil {
		return nil, err
	}
	return v.ReadDir(node)
}

// OpenPath resolves a slash-separated path to a readable FileHandle.
func (v *Volume) OpenPath(path string) (*FileHandle, error) {
	node, err := v.resolvePath(path, pathresolve.ExpectFile)
	if err != nil {
		return nil, err
	}
	return v.openFile(node)
}

func (v *Volume) resolvePath(path string, expect pathresolve.ExpectedType) (*Node, error) {
	root, err := v.Root()
	if err != nil {
		return nil, err
	}
	r := pathresolve.New(root, v.dirIterator(), v.symlinkReader(), v.isDirFn())
	h, err := r.Resolve(path, expect)
	if err != nil {
		return nil, err
	}
	return h.(*Node), nil
}

// dirIterator adapts ReadDir to pathresolve's IterateDirFunc. Each named
// entry's ICB is eagerly resolved so the resolver can tell directories,
// files, and symlinks apart: a File Identifier Descriptor's characteristics
// flag DIRECTORY but never SYMLINK, so symlink-ness can only be known by
// loading the target's own ICB.
func (v *Volume) dirIterator() pathresolve.IterateDirFunc {
	return func(h any) ([]pathresolve.Entry, error) {
		n := h.(*Node)
		des, err := v.ReadDir(n)
		if err != nil {
			return nil, err
		}

		out := make([]pathresolve.Entry, 0, len(des))
		for _, d := range des {
			if d.Name == "." {
				out = append(out, pathresolve.Entry{Name: ".", IsDir: true, Handle: n})
				continue
			}
			node, err := d.Resolve(v)
			if err != nil {
				// One entry's ICB failing to load should not hide its
				// siblings; skip it the way the Directory Iterator skips
				// malformed FIDs.
				continue
			}
			out = append(out, pathresolve.Entry{
				Name:      d.Name,
				IsDir:     node.IsDir(),
				IsSymlink: node.IsSymlink(),
				IsParent:  d.IsParent,
				Handle:    node,
			})
		}
		return out, nil
	}
}

func (v *Volume) symlinkReader() pathresolve.ReadSymlinkFunc {
	return func(h any) (string, error) {
		return v.ReadSymlink(h.(*Node))
	}
}

func (v *Volume) isDirFn() pathresolve.IsDirFunc {
	return func(h any) bool { return h.(*Node).IsDir() }
}
