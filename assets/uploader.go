package assets

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"erfworld/models"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader pushes fetched image bytes into the S3-compatible asset store the
// site serves event images from.
type Uploader struct {
	Client *minio.Client
	Bucket string
	HTTP   *http.Client
}

func NewUploader(endpoint, accessKey, secretKey, bucket string, useSSL bool, timeout time.Duration) (*Uploader, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("asset store client: %w", err)
	}

	return &Uploader{
		Client: client,
		Bucket: bucket,
		HTTP:   &http.Client{Timeout: timeout},
	}, nil
}

// EnsureBucket creates the bucket when missing.
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.Client.BucketExists(ctx, u.Bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return u.Client.MakeBucket(ctx, u.Bucket, minio.MakeBucketOptions{})
}

// Upload fetches every image URL and stores it, keeping the URL→asset pairing
// by index so the first URL stays the primary image. Fetches and puts run
// concurrently and join before returning; any failure fails the whole item.
// A thumbnail of the primary image is uploaded alongside, best-effort.
func (u *Uploader) Upload(ctx context.Context, mediaID string, urls []string) ([]models.AssetRef, string, error) {
	if u == nil || u.Client == nil {
		return nil, "", fmt.Errorf("asset store not configured")
	}

	refs := make([]models.AssetRef, len(urls))
	errs := make([]error, len(urls))
	var firstImage []byte

	var wg sync.WaitGroup
	for i, imageURL := range urls {
		wg.Add(1)
		go func(i int, imageURL string) {
			defer wg.Done()
			data, contentType, err := u.fetchImage(ctx, imageURL)
			if err != nil {
				errs[i] = err
				return
			}
			if i == 0 {
				firstImage = data
			}
			refs[i], errs[i] = u.putObject(ctx, mediaID, data, contentType)
		}(i, imageURL)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, "", err
		}
	}

	thumb := ""
	if len(firstImage) > 0 {
		key, err := u.putThumbnail(ctx, mediaID, firstImage)
		if err != nil {
			log.Printf("thumbnail for %s skipped: %v", mediaID, err)
		} else {
			thumb = key
		}
	}

	return refs, thumb, nil
}

func (u *Uploader) fetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := u.HTTP.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 25<<20))
	if err != nil {
		return nil, "", err
	}
	return data, http.DetectContentType(data), nil
}

func (u *Uploader) putObject(ctx context.Context, mediaID string, data []byte, contentType string) (models.AssetRef, error) {
	ext := ".jpg"
	if contentType == "image/png" {
		ext = ".png"
	} else if contentType == "image/webp" {
		ext = ".webp"
	}
	key := fmt.Sprintf("events/%s/%s%s", mediaID, uuid.New().String(), ext)

	_, err := u.Client.PutObject(ctx, u.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return models.AssetRef{}, fmt.Errorf("upload asset: %w", err)
	}

	return models.AssetRef{
		Key: key,
		URL: fmt.Sprintf("%s/%s/%s", u.Client.EndpointURL(), u.Bucket, key),
	}, nil
}

func (u *Uploader) putThumbnail(ctx context.Context, mediaID string, data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	thumb := imaging.Thumbnail(img, 300, 200, imaging.Lanczos)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return "", err
	}

	key := fmt.Sprintf("events/%s/thumb.jpg", mediaID)
	_, err = u.Client.PutObject(ctx, u.Bucket, key, &buf, int64(buf.Len()),
		minio.PutObjectOptions{ContentType: "image/jpeg"})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", u.Client.EndpointURL(), u.Bucket, key), nil
}
