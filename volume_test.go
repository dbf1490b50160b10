package udf

import (
	"io"
	"testing"
)

func mustMount(t *testing.T) *Volume {
	t.Helper()
	disk := NewSliceDisk(buildFixtureImage())
	v, err := Mount(disk)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return v
}

func TestMount_Succeeds(t *testing.T) {
	v := mustMount(t)
	if v.LBShift != fixtureLBShift {
		t.Fatalf("LBShift=%d want %d", v.LBShift, fixtureLBShift)
	}
	if len(v.Partitions) != 1 {
		t.Fatalf("Partitions=%d want 1", len(v.Partitions))
	}
	if len(v.PartitionMaps) != 1 || v.PartitionMaps[0].PartNum != 0 {
		t.Fatalf("PartitionMaps=%+v want one map indexing partition 0", v.PartitionMaps)
	}
}

func TestMount_RejectsGarbage(t *testing.T) {
	disk := NewSliceDisk(make([]byte, fixtureImageBytes))
	if _, err := Mount(disk); err == nil {
		t.Fatal("expected Mount to fail on an all-zero image")
	}
}

func TestVolume_Label(t *testing.T) {
	v := mustMount(t)
	got, err := v.Label()
	if err != nil {
		t.Fatalf("Label: %v", err)
	}
	if want := "FIXTURE_VOL"; got != want {
		t.Fatalf("Label=%q want %q", got, want)
	}
}

func TestVolume_UUID(t *testing.T) {
	v := mustMount(t)
	got, ok := v.UUID()
	if !ok {
		t.Fatal("UUID: ok=false, want true")
	}
	if want := "0123456789abcdef"; got != want {
		t.Fatalf("UUID=%q want %q", got, want)
	}
}

func TestVolume_RootListing(t *testing.T) {
	v := mustMount(t)
	root, err := v.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	entries, err := v.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	for _, want := range []string{".", "hello.txt", "link", "sub"} {
		if !names[want] {
			t.Fatalf("root listing missing %q: %+v", want, entries)
		}
	}
}

func TestVolume_OpenFileByPath(t *testing.T) {
	v := mustMount(t)
	fh, err := v.OpenPath("hello.txt")
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	data, err := io.ReadAll(fh)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got, want := string(data), "hello world"; got != want {
		t.Fatalf("content=%q want %q", got, want)
	}
}

func TestVolume_OpenNestedFileByPath(t *testing.T) {
	v := mustMount(t)
	fh, err := v.OpenPath("sub/nested.txt")
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	data, err := io.ReadAll(fh)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got, want := string(data), "nested data"; got != want {
		t.Fatalf("content=%q want %q", got, want)
	}
}

func TestVolume_DotDotResolution(t *testing.T) {
	v := mustMount(t)
	backToRoot, err := v.Dir("sub/..")
	if err != nil {
		t.Fatalf("Dir(sub/..): %v", err)
	}

	names := map[string]bool{}
	for _, e := range backToRoot {
		names[e.Name] = true
	}
	if !names["hello.txt"] || !names["sub"] {
		t.Fatalf("sub/.. did not resolve back to root: %+v", backToRoot)
	}
}

func TestVolume_SymlinkFollowedThroughOpenPath(t *testing.T) {
	v := mustMount(t)
	fh, err := v.OpenPath("link")
	if err != nil {
		t.Fatalf("OpenPath(link): %v", err)
	}
	data, err := io.ReadAll(fh)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got, want := string(data), "hello world"; got != want {
		t.Fatalf("content=%q want %q", got, want)
	}
}

func TestVolume_ReadSymlinkTarget(t *testing.T) {
	v := mustMount(t)
	root, err := v.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	entries, err := v.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	var linkNode *Node
	for _, e := range entries {
		if e.Name == "link" {
			linkNode, err = e.Resolve(v)
			if err != nil {
				t.Fatalf("Resolve(link): %v", err)
			}
		}
	}
	if linkNode == nil {
		t.Fatal("link entry not found")
	}
	target, err := v.ReadSymlink(linkNode)
	if err != nil {
		t.Fatalf("ReadSymlink: %v", err)
	}
	if want := "/hello.txt"; target != want {
		t.Fatalf("target=%q want %q", target, want)
	}
}

func TestVolume_Provenance(t *testing.T) {
	v := mustMount(t)
	if _, err := v.OpenPath("hello.txt"); err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	p := v.Provenance()
	if p.ICBTagIdent != tagFileEntry {
		t.Fatalf("Provenance.ICBTagIdent=%d want %d", p.ICBTagIdent, tagFileEntry)
	}
}
