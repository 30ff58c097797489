package mermaid

import (
	"strings"
	"testing"

	"github.com/vmware-tanzu-private/kartographer/inventory"
	"github.com/vmware-tanzu-private/kartographer/relations"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func doc(obj map[string]interface{}) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: obj}
}

func TestNodeID(t *testing.T) {
	tests := []struct {
		name string
		key  inventory.Key
		want string
	}{
		{
			name: "plain",
			key:  inventory.Key{Kind: "Deployment", Namespace: "shop", Name: "web"},
			want: "Deployment_shop_web",
		},
		{
			name: "dashes and dots",
			key:  inventory.Key{Kind: "Service", Namespace: "kube-system", Name: "core.dns"},
			want: "Service_kube_system_core_dns",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NodeID(tt.key); got != tt.want {
				t.Errorf("NodeID() = %v, want %v", got, tt.want)
			}
			// must be reproducible from the triple alone
			if again := NodeID(tt.key); again != tt.want {
				t.Errorf("NodeID() not stable, got %v, want %v", again, tt.want)
			}
		})
	}
}

func TestNodeShapes(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{"Service", `Service_shop_x("Service\nx")`},
		{"Ingress", `Ingress_shop_x("Ingress\nx")`},
		{"ConfigMap", `ConfigMap_shop_x{{CM\nx}}`},
		{"Secret", `Secret_shop_x{{Secret\nx}}`},
		{"PersistentVolumeClaim", `PersistentVolumeClaim_shop_x{{PVC\nx}}`},
		{"HorizontalPodAutoscaler", `HorizontalPodAutoscaler_shop_x[[HPA\nx]]`},
		{"NetworkPolicy", `NetworkPolicy_shop_x[[NetPol\nx]]`},
		{"PodDisruptionBudget", `PodDisruptionBudget_shop_x[[PDB\nx]]`},
		{"ServiceAccount", `ServiceAccount_shop_x([SA\nx])`},
		{"RoleBinding", `RoleBinding_shop_x([RB\nx])`},
		{"Deployment", `Deployment_shop_x[Deploy\nx]`},
		{"CronJob", `CronJob_shop_x[CronJob\nx]`},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got := nodeLine(inventory.Key{Kind: tt.kind, Namespace: "shop", Name: "x"})
			if got != tt.want {
				t.Errorf("nodeLine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	ix := inventory.New([]*unstructured.Unstructured{
		doc(map[string]interface{}{
			"kind":     "Deployment",
			"metadata": map[string]interface{}{"name": "web", "namespace": "shop"},
		}),
		doc(map[string]interface{}{
			"kind":     "Service",
			"metadata": map[string]interface{}{"name": "web-svc", "namespace": "shop"},
		}),
		doc(map[string]interface{}{
			"kind":     "PersistentVolume",
			"metadata": map[string]interface{}{"name": "pv-001"},
		}),
	})
	edges := []relations.Edge{
		{
			From:  inventory.Key{Kind: "Service", Namespace: "shop", Name: "web-svc"},
			To:    inventory.Key{Kind: "Deployment", Namespace: "shop", Name: "web"},
			Label: relations.Selects,
		},
	}

	want := strings.Join([]string{
		"flowchart LR",
		`  subgraph "shop"`,
		`    Deployment_shop_web[Deploy\nweb]`,
		`    Service_shop_web_svc("Service\nweb-svc")`,
		"  end",
		`  subgraph "cluster-scope"`,
		`    PersistentVolume_cluster_pv_001{{PV\npv-001}}`,
		"  end",
		"  Service_shop_web_svc -- selects --> Deployment_shop_web",
		"",
	}, "\n")

	if got := Render(ix, edges); got != want {
		t.Errorf("Render() =\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	docs := []*unstructured.Unstructured{
		doc(map[string]interface{}{
			"kind":     "ConfigMap",
			"metadata": map[string]interface{}{"name": "b-conf", "namespace": "b-ns"},
		}),
		doc(map[string]interface{}{
			"kind":     "ConfigMap",
			"metadata": map[string]interface{}{"name": "a-conf", "namespace": "a-ns"},
		}),
		doc(map[string]interface{}{
			"kind":     "Secret",
			"metadata": map[string]interface{}{"name": "creds", "namespace": "a-ns"},
		}),
	}
	ix := inventory.New(docs)

	first := Render(ix, nil)
	for i := 0; i < 10; i++ {
		if got := Render(inventory.New(docs), nil); got != first {
			t.Fatalf("Render output changed between runs:\n%s\nvs:\n%s", first, got)
		}
	}
	if !strings.Contains(first, `subgraph "a-ns"`) || !strings.Contains(first, `subgraph "b-ns"`) {
		t.Errorf("Render missing namespace subgraphs:\n%s", first)
	}
	if strings.Index(first, `subgraph "a-ns"`) > strings.Index(first, `subgraph "b-ns"`) {
		t.Errorf("namespaces not rendered in sorted order:\n%s", first)
	}
}
