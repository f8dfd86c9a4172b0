package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pageza/foodgram/backend/config"
)

const recipeImagePrefix = "recipes"

// MaxImageBytes bounds a decoded recipe image.
const MaxImageBytes = 5 << 20

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// ImageStore persists an image and returns a URL it can be fetched from.
// Delete of a missing key is not an error.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ImageService turns uploaded data URIs into stored images.
type ImageService struct {
	store ImageStore
}

func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

// SaveDataURI decodes a "data:<mime>;base64,<payload>" image, checks the
// real content type and stores it under a fresh name.
func (s *ImageService) SaveDataURI(ctx context.Context, dataURI string) (string, error) {
	data, err := decodeDataURI(dataURI)
	if err != nil {
		return "", NewValidationError().Add("image", err.Error())
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return "", NewValidationError().Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	key := path.Join(recipeImagePrefix, uuid.NewString()+mt.Extension())
	url, err := s.store.Save(ctx, key, data, mt.String())
	if err != nil {
		return "", errors.Wrap(err, "failed to store image")
	}
	return url, nil
}

// Discard removes an image stored by SaveDataURI. url must be a value
// SaveDataURI returned.
func (s *ImageService) Discard(ctx context.Context, url string) error {
	name := path.Base(url)
	if url == "" || name == "." || name == "/" {
		return errors.Errorf("not a stored image: %q", url)
	}
	return s.store.Delete(ctx, path.Join(recipeImagePrefix, name))
}

func decodeDataURI(dataURI string) ([]byte, error) {
	meta, payload, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("Upload a valid image encoded as a base64 data URI.")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
		return nil, errors.New("The image is too large.")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, errors.New("Upload a valid image encoded as a base64 data URI.")
	}
	return data, nil
}

// S3ImageStore uploads images to an S3 bucket with public-read URLs.
type S3ImageStore struct {
	client *s3.Client
	bucket string
	region string
}

func NewS3ImageStore(cfg *config.S3Config) *S3ImageStore {
	return &S3ImageStore{client: cfg.Client, bucket: cfg.BucketName, region: cfg.Region}
}

func (s *S3ImageStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to upload %s to S3", key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to delete %s from S3", key)
	}
	return nil
}

// LocalImageStore writes images below root and serves them from baseURL.
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	return &LocalImageStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalImageStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create media directory")
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", target)
	}
	return s.baseURL + "/" + key, nil
}

func (s *LocalImageStore) Delete(_ context.Context, key string) error {
	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "failed to remove %s", target)
	}
	return nil
}
