// Copyright 2018 Heptio
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package emitter

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/golang/glog"
	cache "github.com/patrickmn/go-cache"
	"github.com/pborman/uuid"

	"github.com/vmware-tanzu-private/kartographer/metrics"
)

// emitted remembers digests of diagrams already delivered so watch mode
// doesn't resend an unchanged diagram on every file system tick.
var emitted = cache.New(24*time.Hour, time.Hour)

// WasEmitted reports whether this exact diagram was already sent.
func WasEmitted(diagram []byte) bool {
	_, found := emitted.Get(digest(diagram))
	return found
}

// EmitDiagram sends a rendered diagram to a remote endpoint. Each delivery
// carries a fresh run id header so the receiving side can correlate
// re-renders.
func EmitDiagram(diagram []byte, url string) error {
	key := digest(diagram)
	if _, found := emitted.Get(key); found {
		glog.Infof("not emitting, diagram has not changed since last delivery")
		return nil
	}

	req, err := http.NewRequest("PUT", url, bytes.NewBuffer(diagram))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/vnd.mermaid")
	req.Header.Set("X-Run-Id", uuid.NewRandom().String())

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("remote endpoint returned %s", resp.Status)
	}

	emitted.Set(key, true, cache.DefaultExpiration)
	metrics.PayloadsSent.Inc()
	return nil
}

func digest(diagram []byte) string {
	sum := sha256.Sum256(diagram)
	return hex.EncodeToString(sum[:])
}
