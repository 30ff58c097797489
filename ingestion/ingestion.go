// Package ingestion loads Kubernetes manifests from a directory tree. Files
// that can't be read or parsed are reported and skipped; only a completely
// empty result is an error for the caller.
package ingestion

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/vmware-tanzu-private/kartographer/metrics"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/yaml"
)

// ErrNoDocuments signals that the walk finished without a single usable
// manifest. Callers must treat this differently from a manifest set that
// simply produced no relationships.
var ErrNoDocuments = errors.New("no manifests found")

// ReadManifests walks the directory tree rooted at dir and parses every
// .yaml/.yml file it finds, splitting multi-document files. Documents that
// are not mappings are dropped. Returns ErrNoDocuments when nothing usable
// was found.
func ReadManifests(dir string) ([]*unstructured.Unstructured, error) {
	files := []string{}
	err := filepath.Walk(dir, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if f.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	docs := []*unstructured.Unstructured{}
	for _, file := range files {
		fileDocs, err := readFile(file)
		if err != nil {
			glog.Warningf("skipping %s: %v", file, err)
			metrics.FilesSkipped.Inc()
			continue
		}
		docs = append(docs, fileDocs...)
	}

	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	glog.Infof("loaded %d manifests from %s", len(docs), dir)
	return docs, nil
}

// readFile parses one manifest file, which may hold several YAML documents.
// A decode error abandons the rest of the file, matching the per-file
// skip-and-report loading policy.
func readFile(path string) ([]*unstructured.Unstructured, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	docs := []*unstructured.Unstructured{}
	decoder := yaml.NewYAMLOrJSONDecoder(f, 4096)
	for {
		var raw map[string]interface{}
		err := decoder.Decode(&raw)
		if err == io.EOF {
			break
		}
		if err != nil {
			// partial results from earlier documents in the file still count
			if len(docs) > 0 {
				glog.Warningf("skipping rest of %s: %v", path, err)
				metrics.FilesSkipped.Inc()
				break
			}
			return nil, err
		}
		if len(raw) == 0 {
			continue
		}
		docs = append(docs, &unstructured.Unstructured{Object: raw})
		metrics.ManifestsLoaded.Inc()
	}
	return docs, nil
}
