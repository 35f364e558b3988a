package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/config"
	"github.com/localnerve/jam-build-rentals/internal/logging"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storageConfig() *config.Config {
	return &config.Config{
		S3Bucket:         "rentals-docs",
		S3Region:         "us-east-1",
		S3Endpoint:       "http://minio.test:9000",
		S3AccessKey:      "minioadmin",
		S3SecretKey:      "minioadmin",
		S3PresignExpires: 10 * time.Minute,
	}
}

func restorePresign(t *testing.T) {
	origLoad, origNewS3, origNewPre, origPut := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient, presignPutObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
	})
}

func TestPresignUpload(t *testing.T) {
	db := newTestDB(t)
	svc := NewDocumentService(db, storageConfig(), logging.Discard())
	fixed := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return fixed }
	actor := &models.SessionUser{ID: "alice", Role: models.RoleTenant}

	upload, err := svc.PresignUpload(context.Background(), actor, api.DocumentUploadRequest{
		Kind:        "Payslip",
		Filename:    "../../March slip.pdf",
		ContentType: "application/pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, "PUT", upload.Method)
	assert.True(t, strings.HasPrefix(upload.Key, "users/alice/payslip/"), upload.Key)
	assert.True(t, strings.HasSuffix(upload.Key, "-March_slip.pdf"), upload.Key)
	assert.Equal(t, fixed.Add(10*time.Minute), upload.ExpiresAt)

	u, err := url.Parse(upload.URL)
	require.NoError(t, err)
	assert.Equal(t, "minio.test:9000", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/rentals-docs/users/alice/payslip/"), u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))

	var profile models.UserApplicationProfile
	require.NoError(t, db.First(&profile, "user_id = ?", "alice").Error)
	docs, err := profile.DocumentMap()
	require.NoError(t, err)
	require.Contains(t, docs, "payslip")
	assert.Equal(t, upload.Key, docs["payslip"].Key)
	assert.Equal(t, "application/pdf", docs["payslip"].ContentType)

	// A second upload of the same kind replaces the first
	again, err := svc.PresignUpload(context.Background(), actor, api.DocumentUploadRequest{Kind: "payslip", Filename: "april.pdf"})
	require.NoError(t, err)
	require.NoError(t, db.First(&profile, "user_id = ?", "alice").Error)
	docs, err = profile.DocumentMap()
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, again.Key, docs["payslip"].Key)
	assert.Equal(t, "application/octet-stream", docs["payslip"].ContentType)
}

func TestPresignUploadRejects(t *testing.T) {
	db := newTestDB(t)
	actor := &models.SessionUser{ID: "alice"}
	svc := NewDocumentService(db, storageConfig(), logging.Discard())

	tests := []struct {
		name string
		req  api.DocumentUploadRequest
		kind error
	}{
		{"empty kind", api.DocumentUploadRequest{Filename: "a.pdf"}, types.ErrInvalidInput},
		{"odd kind", api.DocumentUploadRequest{Kind: "../etc", Filename: "a.pdf"}, types.ErrInvalidInput},
		{"no filename", api.DocumentUploadRequest{Kind: "id"}, types.ErrInvalidInput},
		{"dot filename", api.DocumentUploadRequest{Kind: "id", Filename: ".."}, types.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PresignUpload(context.Background(), actor, tt.req)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	_, err := svc.PresignUpload(context.Background(), nil, api.DocumentUploadRequest{Kind: "id", Filename: "a.pdf"})
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	disabled := NewDocumentService(db, &config.Config{}, logging.Discard())
	assert.False(t, disabled.Enabled())
	_, err = disabled.PresignUpload(context.Background(), actor, api.DocumentUploadRequest{Kind: "id", Filename: "a.pdf"})
	assert.ErrorIs(t, err, types.ErrUnavailable)
}

func TestPresignUpload_ConfigError(t *testing.T) {
	restorePresign(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	svc := NewDocumentService(newTestDB(t), storageConfig(), logging.Discard())
	_, err := svc.PresignUpload(context.Background(), &models.SessionUser{ID: "alice"}, api.DocumentUploadRequest{Kind: "id", Filename: "a.pdf"})
	assert.ErrorIs(t, err, types.ErrUnavailable)
}

func TestPresignUpload_PresignError(t *testing.T) {
	restorePresign(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-put-fail")
	}

	db := newTestDB(t)
	svc := NewDocumentService(db, storageConfig(), logging.Discard())
	_, err := svc.PresignUpload(context.Background(), &models.SessionUser{ID: "alice"}, api.DocumentUploadRequest{Kind: "id", Filename: "a.pdf"})
	assert.ErrorIs(t, err, types.ErrInternal)

	var count int64
	require.NoError(t, db.Model(&models.UserApplicationProfile{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCleanFilename(t *testing.T) {
	tests := map[string]string{
		"lease.pdf":            "lease.pdf",
		"My Payslip (1).png":   "My_Payslip_1.png",
		"C:\\Users\\me\\id.jpg": "id.jpg",
		"/tmp/../x.txt":        "x.txt",
		"..":                   "",
		"   ":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanFilename(in), in)
	}
}
