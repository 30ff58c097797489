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

// workloadKinds are the kinds scanned for pod spec references, in the fixed
// order they are visited.
var workloadKinds = []string{"Deployment", "StatefulSet", "DaemonSet", "Job", "CronJob"}

// podSpecPaths maps a kind to the location of its pod spec. Kinds not listed
// use the default spec.template.spec; CronJobs carry theirs one level deeper
// inside the job template.
var podSpecPaths = map[string][]string{
	"CronJob": {"spec", "jobTemplate", "spec", "template", "spec"},
}

// workloadReferences scans the pod spec of every workload in the namespace
// for references to config maps, secrets, persistent volume claims and
// service accounts. Volume references emit "mounts" / "uses" edges, env and
// envFrom references emit "reads", and serviceAccountName emits "runs as".
func workloadReferences(ix *inventory.Index, ns string) []Edge {
	edges := []Edge{}
	for _, kind := range workloadKinds {
		for _, name := range ix.Names(kind, ns) {
			wl, _ := ix.Get(kind, ns, name)
			path, ok := podSpecPaths[kind]
			if !ok {
				path = []string{"spec", "template", "spec"}
			}
			podSpec, found, err := unstructured.NestedMap(wl.Object, path...)
			if !found || err != nil {
				continue
			}
			from := inventory.Key{Kind: kind, Namespace: ns, Name: name}
			edges = append(edges, volumeEdges(from, podSpec)...)
			edges = append(edges, containerEdges(from, podSpec)...)
			if sa, found, err := unstructured.NestedString(podSpec, "serviceAccountName"); found && err == nil && sa != "" {
				edges = append(edges, Edge{
					From:  from,
					To:    inventory.Key{Kind: "ServiceAccount", Namespace: ns, Name: sa},
					Label: RunsAs,
				})
			}
		}
	}
	return edges
}

// volumeEdges reads the pod spec volume list: config map and secret volumes
// are mounted, claim volumes are used.
func volumeEdges(from inventory.Key, podSpec map[string]interface{}) []Edge {
	edges := []Edge{}
	vols, _, _ := unstructured.NestedSlice(podSpec, "volumes")
	for _, v := range vols {
		vol, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		if name, found, err := unstructured.NestedString(vol, "configMap", "name"); found && err == nil && name != "" {
			edges = append(edges, Edge{
				From:  from,
				To:    inventory.Key{Kind: "ConfigMap", Namespace: from.Namespace, Name: name},
				Label: Mounts,
			})
		}
		if name, found, err := unstructured.NestedString(vol, "secret", "secretName"); found && err == nil && name != "" {
			edges = append(edges, Edge{
				From:  from,
				To:    inventory.Key{Kind: "Secret", Namespace: from.Namespace, Name: name},
				Label: Mounts,
			})
		}
		if name, found, err := unstructured.NestedString(vol, "persistentVolumeClaim", "claimName"); found && err == nil && name != "" {
			edges = append(edges, Edge{
				From:  from,
				To:    inventory.Key{Kind: "PersistentVolumeClaim", Namespace: from.Namespace, Name: name},
				Label: Uses,
			})
		}
	}
	return edges
}

// containerEdges reads env and envFrom blocks across all containers; any
// config map or secret key reference counts as a read.
func containerEdges(from inventory.Key, podSpec map[string]interface{}) []Edge {
	edges := []Edge{}
	containers, _, _ := unstructured.NestedSlice(podSpec, "containers")
	for _, c := range containers {
		container, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		envs, _, _ := unstructured.NestedSlice(container, "env")
		for _, e := range envs {
			env, ok := e.(map[string]interface{})
			if !ok {
				continue
			}
			if name, found, err := unstructured.NestedString(env, "valueFrom", "configMapKeyRef", "name"); found && err == nil && name != "" {
				edges = append(edges, Edge{
					From:  from,
					To:    inventory.Key{Kind: "ConfigMap", Namespace: from.Namespace, Name: name},
					Label: Reads,
				})
			}
			if name, found, err := unstructured.NestedString(env, "valueFrom", "secretKeyRef", "name"); found && err == nil && name != "" {
				edges = append(edges, Edge{
					From:  from,
					To:    inventory.Key{Kind: "Secret", Namespace: from.Namespace, Name: name},
					Label: Reads,
				})
			}
		}
		envFroms, _, _ := unstructured.NestedSlice(container, "envFrom")
		for _, e := range envFroms {
			envFrom, ok := e.(map[string]interface{})
			if !ok {
				continue
			}
			if name, found, err := unstructured.NestedString(envFrom, "configMapRef", "name"); found && err == nil && name != "" {
				edges = append(edges, Edge{
					From:  from,
					To:    inventory.Key{Kind: "ConfigMap", Namespace: from.Namespace, Name: name},
					Label: Reads,
				})
			}
			if name, found, err := unstructured.NestedString(envFrom, "secretRef", "name"); found && err == nil && name != "" {
				edges = append(edges, Edge{
					From:  from,
					To:    inventory.Key{Kind: "Secret", Namespace: from.Namespace, Name: name},
					Label: Reads,
				})
			}
		}
	}
	return edges
}
