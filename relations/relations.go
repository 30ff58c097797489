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

// Package relations infers directed, labeled relationships between the
// resources held in an inventory.Index. Each relationship family is a pure
// function of the index; Extract runs them all in a fixed namespace major
// order so the resulting edge list is stable run over run.
package relations

import (
	"sort"

	"github.com/vmware-tanzu-private/kartographer/inventory"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Relationship labels. These are part of the renderer contract and must not
// be free text.
const (
	RoutesTo = "routes to"
	Selects  = "selects"
	Scales   = "scales"
	Mounts   = "mounts"
	Reads    = "reads"
	Uses     = "uses"
	RunsAs   = "runs as"
	Binds    = "binds"
	To       = "to"
	BoundTo  = "bound to"
	Applies  = "applies"
	Protects = "protects"
)

// Edge is a directed, labeled relationship between two resource triples.
type Edge struct {
	From  inventory.Key
	To    inventory.Key
	Label string
}

// Extract runs every relationship family against the index: the namespace
// scoped families once per namespace in sorted order, then the cluster
// scoped families once. Edges from independent families are concatenated
// as-is; there is no cross family deduplication.
func Extract(ix *inventory.Index) []Edge {
	edges := []Edge{}
	for _, ns := range ix.Namespaces() {
		edges = append(edges, ingressRoutes(ix, ns)...)
		edges = append(edges, serviceSelections(ix, ns)...)
		edges = append(edges, autoscalerTargets(ix, ns)...)
		edges = append(edges, workloadReferences(ix, ns)...)
		edges = append(edges, roleBindings(ix, ns)...)
		edges = append(edges, networkPolicies(ix, ns)...)
		edges = append(edges, disruptionBudgets(ix, ns)...)
	}
	edges = append(edges, clusterRoleBindings(ix)...)
	edges = append(edges, claimBindings(ix)...)
	return edges
}

// ingressRoutes emits one "routes to" edge per distinct service referenced
// by an ingress, across its rule path backends and default backend.
func ingressRoutes(ix *inventory.Index, ns string) []Edge {
	edges := []Edge{}
	for _, name := range ix.Names("Ingress", ns) {
		ing, _ := ix.Get("Ingress", ns, name)
		backends := map[string]bool{}
		rules, _, _ := unstructured.NestedSlice(ing.Object, "spec", "rules")
		for _, r := range rules {
			rule, ok := r.(map[string]interface{})
			if !ok {
				continue
			}
			paths, _, _ := unstructured.NestedSlice(rule, "http", "paths")
			for _, p := range paths {
				path, ok := p.(map[string]interface{})
				if !ok {
					continue
				}
				if svc, found, err := unstructured.NestedString(path, "backend", "service", "name"); found && err == nil && svc != "" {
					backends[svc] = true
				}
			}
		}
		if svc, found, err := unstructured.NestedString(ing.Object, "spec", "defaultBackend", "service", "name"); found && err == nil && svc != "" {
			backends[svc] = true
		}
		for _, svc := range sortedKeys(backends) {
			edges = append(edges, Edge{
				From:  inventory.Key{Kind: "Ingress", Namespace: ns, Name: name},
				To:    inventory.Key{Kind: "Service", Namespace: ns, Name: svc},
				Label: RoutesTo,
			})
		}
	}
	return edges
}

// autoscalerTargets emits a "scales" edge for each HPA's scaleTargetRef.
func autoscalerTargets(ix *inventory.Index, ns string) []Edge {
	edges := []Edge{}
	for _, name := range ix.Names("HorizontalPodAutoscaler", ns) {
		hpa, _ := ix.Get("HorizontalPodAutoscaler", ns, name)
		kind, kFound, kErr := unstructured.NestedString(hpa.Object, "spec", "scaleTargetRef", "kind")
		target, nFound, nErr := unstructured.NestedString(hpa.Object, "spec", "scaleTargetRef", "name")
		if !kFound || kErr != nil || kind == "" || !nFound || nErr != nil || target == "" {
			continue
		}
		edges = append(edges, Edge{
			From:  inventory.Key{Kind: "HorizontalPodAutoscaler", Namespace: ns, Name: name},
			To:    inventory.Key{Kind: kind, Namespace: ns, Name: target},
			Label: Scales,
		})
	}
	return edges
}

// claimBindings emits a cluster scoped "bound to" edge from each claim that
// names its bound volume. The target always lives in the cluster partition.
func claimBindings(ix *inventory.Index) []Edge {
	edges := []Edge{}
	for _, ns := range ix.Namespaces() {
		for _, name := range ix.Names("PersistentVolumeClaim", ns) {
			pvc, _ := ix.Get("PersistentVolumeClaim", ns, name)
			vol, found, err := unstructured.NestedString(pvc.Object, "spec", "volumeName")
			if !found || err != nil || vol == "" {
				continue
			}
			edges = append(edges, Edge{
				From:  inventory.Key{Kind: "PersistentVolumeClaim", Namespace: ns, Name: name},
				To:    inventory.Key{Kind: "PersistentVolume", Namespace: inventory.ClusterScope, Name: vol},
				Label: BoundTo,
			})
		}
	}
	return edges
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
