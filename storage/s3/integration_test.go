//go:build integration
// +build integration

package s3_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-spa/fs/billy"
	"github.com/input-output-hk/catalyst-forge-spa/storage"
	"github.com/input-output-hk/catalyst-forge-spa/storage/s3"
	"github.com/input-output-hk/catalyst-forge-spa/storage/s3/internal/testutil"
)

// TestIntegrationSPADeploy runs the three deployment operations against LocalStack.
func TestIntegrationSPADeploy(t *testing.T) {
	ls := testutil.StartLocalStack(t)
	ctx := context.Background()

	const bucket = "spa.example.test"
	require.NoError(t, ls.CreateBucket(ctx, bucket))

	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.WriteFile("dist/index.html", []byte("<html></html>"), 0o644))
	require.NoError(t, fsys.WriteFile("dist/assets/app-1a2b.js", []byte("console.log(1)"), 0o644))

	cfg := ls.Config()
	client, err := s3.New(ctx,
		s3.WithAWSConfig(&cfg),
		s3.WithEndpoint(ls.Endpoint),
		s3.WithForcePathStyle(true),
		s3.WithFilesystem(fsys),
	)
	require.NoError(t, err)

	_, err = client.UploadDirectory(ctx, storage.UploadDirectoryRequest{
		Source: "dist", Bucket: bucket, Region: ls.Region, CachePolicy: storage.LongLivedPublic,
	})
	require.NoError(t, err)

	_, err = client.UploadFile(ctx, storage.UploadFileRequest{
		Source: "dist/index.html", Bucket: bucket, Key: "index.html", Region: ls.Region,
		CachePolicy: storage.NoCache,
	})
	require.NoError(t, err)

	_, err = client.PutWebsite(ctx, storage.WebsiteRequest{
		Bucket: bucket, Region: ls.Region, Website: storage.SPAWebsite("index.html"),
	})
	require.NoError(t, err)

	raw := ls.RawClient()

	head, err := raw.HeadObject(ctx, &awss3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String("index.html")})
	require.NoError(t, err)
	assert.Equal(t, storage.NoCacheDirective, aws.ToString(head.CacheControl))

	head, err = raw.HeadObject(ctx, &awss3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String("assets/app-1a2b.js")})
	require.NoError(t, err)
	assert.Equal(t, storage.LongLivedPublicDirective, aws.ToString(head.CacheControl))

	site, err := raw.GetBucketWebsite(ctx, &awss3.GetBucketWebsiteInput{Bucket: aws.String(bucket)})
	require.NoError(t, err)
	assert.Equal(t, "index.html", aws.ToString(site.IndexDocument.Suffix))
	assert.Equal(t, "index.html", aws.ToString(site.ErrorDocument.Key))
}
