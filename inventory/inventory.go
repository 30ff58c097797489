// Copyright 2018 Heptio
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package inventory organizes parsed manifests by kind, namespace and name
// and derives the pod template label index consumed by the selector based
// relationship extractors.
package inventory

import (
	"fmt"
	"sort"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// ClusterScope is the synthetic namespace that cluster scoped kinds are
// indexed under, regardless of any namespace field in the manifest.
const ClusterScope = "cluster"

// clusterKinds are the kinds treated as cluster scoped.
var clusterKinds = map[string]bool{
	"PersistentVolume":   true,
	"ClusterRole":        true,
	"ClusterRoleBinding": true,
}

// templatePaths maps a kind to the field path of its embedded pod template.
// Kinds not listed here use the default spec.template location. CronJobs
// nest the pod template one level deeper, inside the job template.
var templatePaths = map[string][]string{
	"CronJob": {"spec", "jobTemplate", "spec", "template"},
}

// Key is the (kind, namespace, name) identity of an indexed resource.
type Key struct {
	Kind      string
	Namespace string
	Name      string
}

// String renders the key in the pipe delimited form used for lookups and for
// diagram node identity. It must stay a pure function of the triple.
func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s", k.Kind, k.Namespace, k.Name)
}

// Index holds every parsed manifest keyed by kind, namespace and name, plus
// the derived pod template label sets.
type Index struct {
	resources map[string]map[string]map[string]*unstructured.Unstructured
	templates map[Key]map[string]string
}

// New builds an Index from a set of parsed manifests. Duplicate triples are
// last write wins. Manifests missing a kind or name are indexed under the
// "Unknown" and "noname" sentinels so a malformed manifest still shows up as
// a node even though it can't participate in relationships that need the
// missing field.
func New(docs []*unstructured.Unstructured) *Index {
	ix := &Index{
		resources: make(map[string]map[string]map[string]*unstructured.Unstructured),
		templates: make(map[Key]map[string]string),
	}
	for _, doc := range docs {
		ix.add(doc)
	}
	return ix
}

func (ix *Index) add(doc *unstructured.Unstructured) {
	key := keyFor(doc)
	if ix.resources[key.Kind] == nil {
		ix.resources[key.Kind] = make(map[string]map[string]*unstructured.Unstructured)
	}
	if ix.resources[key.Kind][key.Namespace] == nil {
		ix.resources[key.Kind][key.Namespace] = make(map[string]*unstructured.Unstructured)
	}
	ix.resources[key.Kind][key.Namespace][key.Name] = doc

	if labels, ok := templateLabels(doc); ok {
		ix.templates[key] = labels
	}
}

// keyFor derives the identity triple for a manifest, applying the "Unknown",
// "noname" and "default" fallbacks and forcing cluster scoped kinds into the
// cluster partition.
func keyFor(doc *unstructured.Unstructured) Key {
	kind, found, err := unstructured.NestedString(doc.Object, "kind")
	if !found || err != nil || kind == "" {
		kind = "Unknown"
	}
	name, found, err := unstructured.NestedString(doc.Object, "metadata", "name")
	if !found || err != nil || name == "" {
		name = "noname"
	}
	ns, found, err := unstructured.NestedString(doc.Object, "metadata", "namespace")
	if !found || err != nil || ns == "" {
		ns = "default"
	}
	if clusterKinds[kind] {
		ns = ClusterScope
	}
	return Key{Kind: kind, Namespace: ns, Name: name}
}

// templateLabels pulls the labels off a manifest's embedded pod template,
// reporting false when the manifest carries no template at all. A template
// with no labels of its own still yields an (empty) entry.
func templateLabels(doc *unstructured.Unstructured) (map[string]string, bool) {
	kind, _, _ := unstructured.NestedString(doc.Object, "kind")
	path, ok := templatePaths[kind]
	if !ok {
		path = []string{"spec", "template"}
	}
	if _, found, err := unstructured.NestedMap(doc.Object, path...); !found || err != nil {
		return nil, false
	}
	labelPath := append(append([]string{}, path...), "metadata", "labels")
	labels, found, err := unstructured.NestedStringMap(doc.Object, labelPath...)
	if !found || err != nil {
		labels = map[string]string{}
	}
	return labels, true
}

// Get looks up a single manifest by its triple.
func (ix *Index) Get(kind, namespace, name string) (*unstructured.Unstructured, bool) {
	doc, ok := ix.resources[kind][namespace][name]
	return doc, ok
}

// Names returns the sorted resource names present for a kind in a namespace.
func (ix *Index) Names(kind, namespace string) []string {
	names := make([]string, 0, len(ix.resources[kind][namespace]))
	for name := range ix.resources[kind][namespace] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Kinds returns the sorted set of kinds present in the index.
func (ix *Index) Kinds() []string {
	kinds := make([]string, 0, len(ix.resources))
	for kind := range ix.resources {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Namespaces returns the sorted set of real namespaces in the index. The
// synthetic cluster scope is excluded; callers that need it use ClusterScope
// directly.
func (ix *Index) Namespaces() []string {
	seen := make(map[string]bool)
	for _, nsMap := range ix.resources {
		for ns := range nsMap {
			if ns != ClusterScope {
				seen[ns] = true
			}
		}
	}
	namespaces := make([]string, 0, len(seen))
	for ns := range seen {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	return namespaces
}

// HasClusterScope reports whether any cluster scoped resource was indexed.
func (ix *Index) HasClusterScope() bool {
	for kind := range clusterKinds {
		if len(ix.resources[kind][ClusterScope]) > 0 {
			return true
		}
	}
	return false
}

// TemplateLabels returns the derived label set for a templated resource.
func (ix *Index) TemplateLabels(key Key) (map[string]string, bool) {
	labels, ok := ix.templates[key]
	return labels, ok
}

// TemplatedWorkloads returns the keys of every resource in the namespace
// that carries a pod template, sorted so extraction order is stable.
func (ix *Index) TemplatedWorkloads(namespace string) []Key {
	keys := []Key{}
	for key := range ix.templates {
		if key.Namespace == namespace {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Len returns the total number of indexed resources.
func (ix *Index) Len() int {
	total := 0
	for _, nsMap := range ix.resources {
		for _, names := range nsMap {
			total += len(names)
		}
	}
	return total
}
