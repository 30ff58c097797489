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

package relations

import (
	"github.com/vmware-tanzu-private/kartographer/inventory"
	"github.com/vmware-tanzu-private/kartographer/selector"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// serviceSelections tests each service's selector against every pod template
// label set in the same namespace. Service selectors are plain equality
// maps; there is no expression support at this layer.
func serviceSelections(ix *inventory.Index, ns string) []Edge {
	edges := []Edge{}
	for _, name := range ix.Names("Service", ns) {
		svc, _ := ix.Get("Service", ns, name)
		labels, found, err := unstructured.NestedStringMap(svc.Object, "spec", "selector")
		if !found || err != nil || len(labels) == 0 {
			continue
		}
		sel := selector.FromLabels(labels)
		from := inventory.Key{Kind: "Service", Namespace: ns, Name: name}
		edges = append(edges, matchWorkloads(ix, ns, from, sel, Selects)...)
	}
	return edges
}

// networkPolicies tests each policy's podSelector, equality and expression
// terms both, against the namespace's pod template label sets.
func networkPolicies(ix *inventory.Index, ns string) []Edge {
	return selectorEdges(ix, ns, "NetworkPolicy", []string{"spec", "podSelector"}, Applies)
}

// disruptionBudgets tests each budget's selector against the namespace's pod
// template label sets.
func disruptionBudgets(ix *inventory.Index, ns string) []Edge {
	return selectorEdges(ix, ns, "PodDisruptionBudget", []string{"spec", "selector"}, Protects)
}

// selectorEdges is the shared walk for kinds whose relationship is "my
// selector matches your pod template labels".
func selectorEdges(ix *inventory.Index, ns, kind string, path []string, label string) []Edge {
	edges := []Edge{}
	for _, name := range ix.Names(kind, ns) {
		doc, _ := ix.Get(kind, ns, name)
		raw, found, err := unstructured.NestedMap(doc.Object, path...)
		if !found || err != nil {
			continue
		}
		sel := selector.Parse(raw)
		from := inventory.Key{Kind: kind, Namespace: ns, Name: name}
		edges = append(edges, matchWorkloads(ix, ns, from, sel, label)...)
	}
	return edges
}

// matchWorkloads emits one edge per templated workload in the namespace
// whose template labels satisfy the selector.
func matchWorkloads(ix *inventory.Index, ns string, from inventory.Key, sel selector.Selector, label string) []Edge {
	edges := []Edge{}
	for _, target := range ix.TemplatedWorkloads(ns) {
		labels, ok := ix.TemplateLabels(target)
		if !ok {
			continue
		}
		if selector.Matches(labels, sel) {
			edges = append(edges, Edge{From: from, To: target, Label: label})
		}
	}
	return edges
}
