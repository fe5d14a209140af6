package s3

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/envforge/envforge/internal/util/naming"
)

// objectStore is the subset of Client the publisher needs.
type objectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, data []byte) error
}

// Publisher uploads rendered templates to a bucket and returns the HTTPS
// location the deployment service fetches them from. Keys are
// content-addressed, so republishing an unchanged template is a harmless
// overwrite of identical bytes.
type Publisher struct {
	store   objectStore
	bucket  string
	prefix  string
	region  string
	ensured bool
}

// NewPublisher returns a Publisher writing under prefix in the named bucket.
func NewPublisher(client *Client, bucket, prefix string) *Publisher {
	return &Publisher{store: client, bucket: bucket, prefix: prefix, region: client.Region()}
}

// Publish uploads one rendered template and returns its HTTPS URL.
func (p *Publisher) Publish(ctx context.Context, name string, body []byte) (string, error) {
	if !p.ensured {
		if err := p.store.EnsureBucket(ctx, p.bucket); err != nil {
			return "", fmt.Errorf("failed to prepare template bucket: %w", err)
		}
		p.ensured = true
	}

	sum := sha256.Sum256(body)
	key := naming.TemplateKey(p.prefix, name, hex.EncodeToString(sum[:]))
	if err := p.store.PutObject(ctx, p.bucket, key, body); err != nil {
		return "", err
	}
	return p.objectURL(key), nil
}

func (p *Publisher) objectURL(key string) string {
	if p.region == "" || p.region == "us-east-1" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", p.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key)
}
