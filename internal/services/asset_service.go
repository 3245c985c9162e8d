package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/madina-markt/api/internal/platform/storage"
)

var (
	errAssetSignerRequired = errors.New("asset service: storage client is required")
	errAssetBucketRequired = errors.New("asset service: bucket is required")
)

// ErrAssetInvalidInput indicates the caller supplied invalid input.
var ErrAssetInvalidInput = errors.New("asset service: invalid input")

// ErrAssetUnavailable indicates the signing backend cannot fulfil the request.
var ErrAssetUnavailable = errors.New("asset service: unavailable")

// Image uploads accept browser-native raster formats only.
var allowedImageContentTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

type urlSigner interface {
	SignedUploadURL(ctx context.Context, bucket, object string, opts storage.UploadOptions) (storage.SignedURLResult, error)
	SignedDownloadURL(ctx context.Context, bucket, object string, opts storage.DownloadOptions) (storage.SignedURLResult, error)
}

// SignUploadCommand requests a signed upload URL for a catalog image.
type SignUploadCommand struct {
	Kind        storage.AssetKind
	OwnerID     string
	FileName    string
	ContentType string
	ContentMD5  string
}

// SignDownloadCommand requests a signed download URL for a stored catalog image.
type SignDownloadCommand struct {
	Kind     storage.AssetKind
	OwnerID  string
	FileName string
}

// AssetServiceDeps wires the signing client and the catalog image bucket.
type AssetServiceDeps struct {
	Storage       urlSigner
	Bucket        string
	MaxUploadSize int64
	UploadExpiry  time.Duration
	IDGenerator   func() string
}

type assetService struct {
	storage      urlSigner
	bucket       string
	maxSize      int64
	uploadExpiry time.Duration
	newID        func() string
}

// NewAssetService constructs an AssetService enforcing dependency validation.
func NewAssetService(deps AssetServiceDeps) (AssetService, error) {
	if deps.Storage == nil {
		return nil, errAssetSignerRequired
	}
	bucket := strings.TrimSpace(deps.Bucket)
	if bucket == "" {
		return nil, errAssetBucketRequired
	}

	maxSize := deps.MaxUploadSize
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	expiry := deps.UploadExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	service := &assetService{
		storage:      deps.Storage,
		bucket:       bucket,
		maxSize:      maxSize,
		uploadExpiry: expiry,
		newID:        idGen,
	}
	return service, nil
}

// SignUpload issues a signed PUT URL for a new catalog image. The object name
// gets a minted prefix so repeated uploads of the same file never collide.
func (s *assetService) SignUpload(ctx context.Context, cmd SignUploadCommand) (SignedAssetResponse, error) {
	fileName := strings.TrimSpace(cmd.FileName)
	if fileName == "" {
		return SignedAssetResponse{}, fmt.Errorf("%w: file name is required", ErrAssetInvalidInput)
	}
	contentType := strings.TrimSpace(cmd.ContentType)
	if contentType == "" {
		return SignedAssetResponse{}, fmt.Errorf("%w: content type is required", ErrAssetInvalidInput)
	}

	assetID := s.newID()
	object, err := storage.ObjectPath(cmd.Kind, strings.TrimSpace(cmd.OwnerID), assetID+"-"+fileName)
	if err != nil {
		return SignedAssetResponse{}, fmt.Errorf("%w: %v", ErrAssetInvalidInput, err)
	}

	result, err := s.storage.SignedUploadURL(ctx, s.bucket, object, storage.UploadOptions{
		ContentType:         contentType,
		ContentMD5:          strings.TrimSpace(cmd.ContentMD5),
		AllowedContentTypes: allowedImageContentTypes,
		MaxSize:             s.maxSize,
		ExpiresIn:           s.uploadExpiry,
	})
	if err != nil {
		if errors.Is(err, storage.ErrContentTypeNotAllowed) {
			return SignedAssetResponse{}, fmt.Errorf("%w: %v", ErrAssetInvalidInput, err)
		}
		return SignedAssetResponse{}, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}

	return SignedAssetResponse{
		AssetID:   object,
		URL:       result.URL,
		ExpiresAt: result.ExpiresAt,
		Method:    result.Method,
		Headers:   result.Headers,
	}, nil
}

// SignDownload issues a signed GET URL for an existing catalog image.
func (s *assetService) SignDownload(ctx context.Context, cmd SignDownloadCommand) (SignedAssetResponse, error) {
	fileName := strings.TrimSpace(cmd.FileName)
	if fileName == "" {
		return SignedAssetResponse{}, fmt.Errorf("%w: file name is required", ErrAssetInvalidInput)
	}

	object, err := storage.ObjectPath(cmd.Kind, strings.TrimSpace(cmd.OwnerID), fileName)
	if err != nil {
		return SignedAssetResponse{}, fmt.Errorf("%w: %v", ErrAssetInvalidInput, err)
	}

	result, err := s.storage.SignedDownloadURL(ctx, s.bucket, object, storage.DownloadOptions{})
	if err != nil {
		return SignedAssetResponse{}, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}

	return SignedAssetResponse{
		AssetID:   object,
		URL:       result.URL,
		ExpiresAt: result.ExpiresAt,
		Method:    result.Method,
		Headers:   result.Headers,
	}, nil
}
