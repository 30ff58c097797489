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

// Package mermaid renders an indexed resource set and its relationship
// edges as a Mermaid flowchart, one subgraph per namespace plus one for
// cluster scoped resources.
package mermaid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vmware-tanzu-private/kartographer/inventory"
	"github.com/vmware-tanzu-private/kartographer/relations"
)

var nonWord = regexp.MustCompile(`\W`)

// clusterKinds are the kinds grouped into the cluster-scope subgraph.
var clusterKinds = []string{"ClusterRole", "ClusterRoleBinding", "PersistentVolume"}

// shortKinds maps kinds to the abbreviated display names used in node
// labels. Kinds not listed render as-is.
var shortKinds = map[string]string{
	"Deployment":              "Deploy",
	"StatefulSet":             "Sts",
	"DaemonSet":               "Ds",
	"HorizontalPodAutoscaler": "HPA",
	"PersistentVolumeClaim":   "PVC",
	"PersistentVolume":        "PV",
	"ConfigMap":               "CM",
	"ServiceAccount":          "SA",
	"ClusterRole":             "CRole",
	"ClusterRoleBinding":      "CRB",
	"Role":                    "Role",
	"RoleBinding":             "RB",
	"NetworkPolicy":           "NetPol",
	"PodDisruptionBudget":     "PDB",
}

// NodeID derives the diagram identifier for a resource triple. It is a pure
// function of the triple so the same resource always gets the same id.
func NodeID(key inventory.Key) string {
	return nonWord.ReplaceAllString(key.String(), "_")
}

// Render produces the complete Mermaid flowchart document for an index and
// its extracted edges. Node order inside each subgraph is sorted by kind
// then name; edge lines keep the extraction order.
func Render(ix *inventory.Index, edges []relations.Edge) string {
	var out strings.Builder
	out.WriteString("flowchart LR\n")

	for _, ns := range ix.Namespaces() {
		fmt.Fprintf(&out, "  subgraph %q\n", ns)
		for _, kind := range ix.Kinds() {
			for _, name := range ix.Names(kind, ns) {
				out.WriteString("    " + nodeLine(inventory.Key{Kind: kind, Namespace: ns, Name: name}) + "\n")
			}
		}
		out.WriteString("  end\n")
	}

	if ix.HasClusterScope() {
		out.WriteString("  subgraph \"cluster-scope\"\n")
		for _, kind := range clusterKinds {
			for _, name := range ix.Names(kind, inventory.ClusterScope) {
				out.WriteString("    " + nodeLine(inventory.Key{Kind: kind, Namespace: inventory.ClusterScope, Name: name}) + "\n")
			}
		}
		out.WriteString("  end\n")
	}

	for _, e := range edges {
		fmt.Fprintf(&out, "  %s -- %s --> %s\n", NodeID(e.From), e.Label, NodeID(e.To))
	}

	return out.String()
}

// nodeLine prints a single node with a shape chosen by kind category:
// stadiums for traffic kinds, hexagons for data kinds, subroutines for
// policy kinds, rounded boxes for identity kinds, rectangles otherwise.
func nodeLine(key inventory.Key) string {
	id := NodeID(key)
	label := fmt.Sprintf("%s\\n%s", shortKind(key.Kind), key.Name)
	switch key.Kind {
	case "Service", "Ingress":
		return fmt.Sprintf("%s(\"%s\")", id, label)
	case "ConfigMap", "Secret", "PersistentVolumeClaim", "PersistentVolume":
		return fmt.Sprintf("%s{{%s}}", id, label)
	case "HorizontalPodAutoscaler", "NetworkPolicy", "PodDisruptionBudget":
		return fmt.Sprintf("%s[[%s]]", id, label)
	case "Role", "ClusterRole", "RoleBinding", "ClusterRoleBinding", "ServiceAccount":
		return fmt.Sprintf("%s([%s])", id, label)
	}
	return fmt.Sprintf("%s[%s]", id, label)
}

func shortKind(kind string) string {
	if short, ok := shortKinds[kind]; ok {
		return short
	}
	return kind
}
