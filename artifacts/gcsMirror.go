package artifacts

import (
	"context"
	"path"

	"cloud.google.com/go/storage"
	"github.com/mmdatafocus/requisition_inbound/utils"
)

// GCSMirror copies artifacts to a bucket under an optional prefix.
type GCSMirror struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSMirror(ctx context.Context, bucket string, prefix string) (*GCSMirror, error) {
	client, err := utils.GetGCSClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSMirror{client: client, bucket: bucket, prefix: prefix}, nil
}

func (m *GCSMirror) Put(ctx context.Context, name string, contentType string, data []byte) error {
	return utils.UploadObjectToGCS(ctx, m.client, m.bucket, path.Join(m.prefix, name), contentType, data)
}

func (m *GCSMirror) Close() error {
	return m.client.Close()
}
