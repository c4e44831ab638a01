package main

import (
	"context"
	"fmt"

	"essencialform/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/kelseyhightower/envconfig"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	switch c.StorageBackend {
	case "s3", "drive":
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be s3 or drive, got %q", c.StorageBackend)
	}

	if c.StorageBackend == "drive" && c.DriveParentFolderID == "" {
		return nil, fmt.Errorf("set GOOGLE_DRIVE_PARENT_FOLDER_ID when STORAGE_BACKEND=drive")
	}

	return c, nil
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return awsConfig, nil
}
