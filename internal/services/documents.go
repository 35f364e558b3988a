// documents.go
//
// Rental marketplace backend for the jam-build stack
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jam-build-rentals.
// jam-build-rentals is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jam-build-rentals is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jam-build-rentals.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/localnerve/jam-build-rentals/internal/api"
	"github.com/localnerve/jam-build-rentals/internal/config"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/types"
	"gorm.io/gorm"
)

// Replaceable in tests
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

var documentKind = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)

// DocumentService hands out presigned upload URLs for applicant documents and
// records each upload in the applicant's profile
type DocumentService struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *slog.Logger
	Now func() time.Time
}

// NewDocumentService creates a DocumentService
func NewDocumentService(db *gorm.DB, cfg *config.Config, log *slog.Logger) *DocumentService {
	return &DocumentService{DB: db, Cfg: cfg, Log: log, Now: time.Now}
}

// Enabled reports whether a bucket is configured
func (s *DocumentService) Enabled() bool {
	return s.Cfg.StorageEnabled()
}

func (s *DocumentService) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s.Cfg.S3Region),
	}
	if s.Cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.Cfg.S3AccessKey, s.Cfg.S3SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.Cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3PresignClient(client), nil
}

// ObjectKey builds the storage key of an uploaded document
func ObjectKey(userID, kind, filename string) string {
	return fmt.Sprintf("users/%s/%s/%s-%s", userID, kind, uuid.NewString(), filename)
}

// cleanFilename keeps the last path element and drops characters that do not
// belong in an object key
func cleanFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// PresignUpload returns a URL the actor can PUT one document to
func (s *DocumentService) PresignUpload(ctx context.Context, actor *models.SessionUser, req api.DocumentUploadRequest) (*api.DocumentUpload, error) {
	if actor == nil {
		return nil, types.Unauthorized("Authentication required")
	}
	if !s.Enabled() {
		return nil, types.Unavailable("Document storage is not configured")
	}

	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	if !documentKind.MatchString(kind) {
		return nil, types.InvalidInput("kind must be a short lowercase name")
	}
	filename := cleanFilename(req.Filename)
	if filename == "" {
		return nil, types.InvalidInput("filename is required")
	}
	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	pc, err := s.presignClient(ctx)
	if err != nil {
		s.Log.Error("storage client unavailable", "error", err)
		return nil, types.Unavailable("Document storage is unavailable")
	}

	key := ObjectKey(actor.ID, kind, filename)
	expires := s.Cfg.S3PresignExpires
	presigned, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Cfg.S3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return nil, storeError(s.Log, "Failed to create upload URL", err)
	}

	now := s.Now().UTC()
	ref := models.DocumentRef{Key: key, Filename: filename, ContentType: contentType, UploadedAt: now}
	if err := s.record(ctx, actor.ID, kind, ref); err != nil {
		return nil, storeError(s.Log, "Failed to record document", err)
	}

	return &api.DocumentUpload{
		URL:       presigned.URL,
		Method:    presigned.Method,
		Key:       key,
		ExpiresAt: now.Add(expires),
	}, nil
}

// record stores ref under kind in the profile's documents bag, replacing any
// earlier document of the same kind
func (s *DocumentService) record(ctx context.Context, userID, kind string, ref models.DocumentRef) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile := models.UserApplicationProfile{UserID: userID}
		if err := tx.Where(models.UserApplicationProfile{UserID: userID}).FirstOrCreate(&profile).Error; err != nil {
			return err
		}
		docs, err := profile.DocumentMap()
		if err != nil {
			return err
		}
		docs[kind] = ref
		payload, err := models.NewJSON(docs)
		if err != nil {
			return err
		}
		return tx.Model(&profile).Update("documents", payload).Error
	})
}
