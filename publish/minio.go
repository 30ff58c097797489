package publish

import (
	"bytes"

	"github.com/golang/glog"
	"github.com/minio/minio-go"
)

// MinioNewClient connects to the configured MinIO endpoint.
func (p *Publisher) MinioNewClient() (*minio.Client, error) {
	useSSL := !p.ConnInfo.DisableSSL
	client, err := minio.New(p.ConnInfo.Endpoint, p.ConnInfo.AccessKey, p.ConnInfo.AccessSecret, useSSL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// MinioPutObject uploads a diagram to the configured MinIO bucket.
func (p *Publisher) MinioPutObject(name string, diagram []byte) error {
	if p.ConnInfo.MinioClient == nil {
		client, err := p.MinioNewClient()
		if err != nil {
			return err
		}
		p.ConnInfo.MinioClient = client
	}

	_, err := p.ConnInfo.MinioClient.PutObject(p.ConnInfo.BucketName, name,
		bytes.NewReader(diagram), int64(len(diagram)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return err
	}

	glog.Infof("uploaded %s to minio bucket %s", name, p.ConnInfo.BucketName)
	return nil
}
