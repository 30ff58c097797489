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

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// roleBindings resolves each binding's roleRef (a Role in the binding's own
// namespace, or a ClusterRole in cluster scope) and its ServiceAccount
// subjects. Subject namespaces default to the binding's namespace, so the
// edge may cross namespaces when a subject says so explicitly.
func roleBindings(ix *inventory.Index, ns string) []Edge {
	edges := []Edge{}
	for _, name := range ix.Names("RoleBinding", ns) {
		rb, _ := ix.Get("RoleBinding", ns, name)
		from := inventory.Key{Kind: "RoleBinding", Namespace: ns, Name: name}

		roleKind, kFound, kErr := unstructured.NestedString(rb.Object, "roleRef", "kind")
		roleName, nFound, nErr := unstructured.NestedString(rb.Object, "roleRef", "name")
		if kFound && kErr == nil && roleKind != "" && nFound && nErr == nil && roleName != "" {
			roleNs := ns
			if roleKind != "Role" {
				roleNs = inventory.ClusterScope
			}
			edges = append(edges, Edge{
				From:  from,
				To:    inventory.Key{Kind: roleKind, Namespace: roleNs, Name: roleName},
				Label: Binds,
			})
		}
		edges = append(edges, subjectEdges(rb, from)...)
	}
	return edges
}

// clusterRoleBindings is the cluster scoped counterpart: every binding
// resolves a ClusterRole, and subjects without an explicit namespace stay in
// the binding's own (cluster) partition.
func clusterRoleBindings(ix *inventory.Index) []Edge {
	edges := []Edge{}
	for _, name := range ix.Names("ClusterRoleBinding", inventory.ClusterScope) {
		crb, _ := ix.Get("ClusterRoleBinding", inventory.ClusterScope, name)
		from := inventory.Key{Kind: "ClusterRoleBinding", Namespace: inventory.ClusterScope, Name: name}

		roleName, found, err := unstructured.NestedString(crb.Object, "roleRef", "name")
		if found && err == nil && roleName != "" {
			edges = append(edges, Edge{
				From:  from,
				To:    inventory.Key{Kind: "ClusterRole", Namespace: inventory.ClusterScope, Name: roleName},
				Label: Binds,
			})
		}
		edges = append(edges, subjectEdges(crb, from)...)
	}
	return edges
}

// subjectEdges emits a "to" edge for each ServiceAccount subject of a
// binding. Subjects of other kinds (User, Group) name principals that exist
// outside the manifest set and are skipped.
func subjectEdges(binding *unstructured.Unstructured, from inventory.Key) []Edge {
	edges := []Edge{}
	subjects, _, _ := unstructured.NestedSlice(binding.Object, "subjects")
	for _, s := range subjects {
		subject, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		if kind, _, _ := unstructured.NestedString(subject, "kind"); kind != "ServiceAccount" {
			continue
		}
		name, found, err := unstructured.NestedString(subject, "name")
		if !found || err != nil || name == "" {
			continue
		}
		saNs, found, err := unstructured.NestedString(subject, "namespace")
		if !found || err != nil || saNs == "" {
			saNs = from.Namespace
		}
		edges = append(edges, Edge{
			From:  from,
			To:    inventory.Key{Kind: "ServiceAccount", Namespace: saNs, Name: name},
			Label: To,
		})
	}
	return edges
}
