package ingestion

import (
	"sort"
	"testing"
)

func TestReadManifests(t *testing.T) {
	docs, err := ReadManifests("testdata/manifests")
	if err != nil {
		t.Fatalf("ReadManifests() error = %v", err)
	}

	// web.yaml holds two documents, volume.yml one; broken.yaml and
	// README.txt contribute nothing
	if len(docs) != 3 {
		t.Fatalf("ReadManifests() returned %d documents, want 3", len(docs))
	}

	kinds := []string{}
	for _, doc := range docs {
		kind, _ := doc.Object["kind"].(string)
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	want := []string{"Deployment", "PersistentVolume", "Service"}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds = %v, want %v", kinds, want)
			break
		}
	}
}

func TestReadManifestsEmpty(t *testing.T) {
	_, err := ReadManifests("testdata/empty")
	if err != ErrNoDocuments {
		t.Errorf("ReadManifests() error = %v, want ErrNoDocuments", err)
	}
}

func TestReadManifestsMissingDir(t *testing.T) {
	_, err := ReadManifests("testdata/does-not-exist")
	if err == nil {
		t.Errorf("ReadManifests() on a missing dir should error")
	}
	if err == ErrNoDocuments {
		t.Errorf("a missing dir must be distinguishable from an empty one")
	}
}
