package publish

import (
	"bytes"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/golang/glog"
)

// S3NewSession builds an AWS session from the publisher's connection info.
func (p *Publisher) S3NewSession() (*session.Session, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(p.ConnInfo.AccessKey, p.ConnInfo.AccessSecret, ""),
		Region:           aws.String(p.ConnInfo.Region),
		Endpoint:         aws.String(p.ConnInfo.Endpoint),
		DisableSSL:       aws.Bool(p.ConnInfo.DisableSSL),
		S3ForcePathStyle: aws.Bool(true)},
	)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// S3PutObject uploads a diagram to the configured S3 bucket.
func (p *Publisher) S3PutObject(name string, diagram []byte) error {
	if p.ConnInfo.S3Session == nil {
		sess, err := p.S3NewSession()
		if err != nil {
			return err
		}
		p.ConnInfo.S3Session = sess
	}

	uploader := s3manager.NewUploader(p.ConnInfo.S3Session)
	_, err := uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(p.ConnInfo.BucketName),
		Key:         aws.String(name),
		Body:        bytes.NewReader(diagram),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return err
	}

	glog.Infof("uploaded %s to s3 bucket %s", name, p.ConnInfo.BucketName)
	return nil
}
