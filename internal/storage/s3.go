package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"essencialform/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the single S3 call the provider needs, satisfied by *s3.Client.
type s3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Provider stores documents as private objects under a per-submission key
// prefix.
type S3Provider struct {
	client s3API
	bucket string
	region string
}

func NewS3Provider(client *s3.Client, bucket, region string) *S3Provider {
	return &S3Provider{
		client: client,
		bucket: bucket,
		region: region,
	}
}

func (p *S3Provider) Store(ctx context.Context, file File, owner Owner, _ *FolderSlot) (*StoredFile, error) {
	ext := strings.TrimPrefix(filepath.Ext(file.Name), ".")
	if ext == "" {
		ext = "bin"
	}

	// Key collisions across retries are avoided with a nanoid suffix.
	key := fmt.Sprintf("documents/%s/%s_%s.%s",
		strconv.FormatInt(owner.SubmissionID, 10),
		file.DocumentType,
		utils.NanoID(),
		ext,
	)

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Data),
		ContentType: aws.String(file.ContentType),
		ACL:         s3types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	return &StoredFile{
		Key: key,
		URL: fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key),
	}, nil
}
