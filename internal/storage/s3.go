package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/atento/knowledge/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func NewS3Client(ctx context.Context) *s3.Client {
	region := util.GetEnv("AWS_REGION")
	endpoint := util.GetEnv("AWS_ENDPOINT")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithBaseEndpoint(endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return nil
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client
}

func sourceKey(tenantID, sourceID string) string {
	return fmt.Sprintf("sources/%s/%s", tenantID, sourceID)
}

// PutSourceText stores the original uploaded text of a source so it can
// be re-ingested after segmentation settings change.
func PutSourceText(ctx context.Context, client *s3.Client, tenantID, sourceID string, text string) error {
	bucket := util.GetEnv("AWS_BUCKET")
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(sourceKey(tenantID, sourceID)),
		Body:        bytes.NewReader([]byte(text)),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload source text to S3: %w", err)
	}
	return nil
}

func GetSourceText(ctx context.Context, client *s3.Client, tenantID, sourceID string) (string, error) {
	bucket := util.GetEnv("AWS_BUCKET")
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(sourceKey(tenantID, sourceID)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get source text from S3: %w", err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, result.Body); err != nil {
		return "", fmt.Errorf("failed to read source text: %w", err)
	}
	return buf.String(), nil
}

func DeleteSourceText(ctx context.Context, client *s3.Client, tenantID, sourceID string) error {
	bucket := util.GetEnv("AWS_BUCKET")
	_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(sourceKey(tenantID, sourceID)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete source text from S3: %w", err)
	}
	return nil
}
