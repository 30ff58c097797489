// Package publish uploads rendered diagrams to object storage so other
// teams can pull the latest map without running the tool.
package publish

import (
	"fmt"
	"math/rand"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/minio/minio-go"
	"github.com/oklog/ulid"

	"github.com/vmware-tanzu-private/kartographer/config"
	"github.com/vmware-tanzu-private/kartographer/metrics"
)

const contentType = "text/vnd.mermaid"

// Publisher uploads diagrams to an S3 compatible bucket.
type Publisher struct {
	Provider string
	ConnInfo ConnectionInfo
}

// ConnectionInfo holds the provider connection settings.
type ConnectionInfo struct {
	Region       string
	BucketName   string
	Endpoint     string
	AccessKey    string
	AccessSecret string
	Prefix       string
	DisableSSL   bool
	S3Session    *session.Session
	MinioClient  *minio.Client
}

// New builds a Publisher from the publish section of the config.
func New(cfg config.PublishConfig) *Publisher {
	return &Publisher{
		Provider: cfg.Provider,
		ConnInfo: ConnectionInfo{
			Region:       cfg.Region,
			BucketName:   cfg.BucketName,
			Endpoint:     cfg.Endpoint,
			AccessKey:    cfg.AccessKey,
			AccessSecret: cfg.AccessSecret,
			Prefix:       cfg.Prefix,
		},
	}
}

// Put uploads one rendered diagram under a fresh time ordered object name.
func (p *Publisher) Put(diagram []byte) error {
	name := p.objectName(time.Now())
	var err error
	switch p.Provider {
	case "aws":
		p.ConnInfo.DisableSSL = false
		err = p.S3PutObject(name, diagram)
	case "minio":
		p.ConnInfo.DisableSSL = true
		err = p.MinioPutObject(name, diagram)
	default:
		return fmt.Errorf("unknown publish provider: %q", p.Provider)
	}
	if err != nil {
		return err
	}
	metrics.PayloadsSent.Inc()
	return nil
}

// objectName derives a ULID based object key so listings sort newest last
// and concurrent runs never collide.
func (p *Publisher) objectName(now time.Time) string {
	entropy := rand.New(rand.NewSource(now.UnixNano()))
	id := ulid.MustNew(ulid.Timestamp(now), entropy)
	return path.Join(p.ConnInfo.Prefix, fmt.Sprintf("%s.mmd", id))
}
