package loaders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

const gcsScheme = "gs://"

func parseGCSURI(uri string) (bucket, object string, ok bool) {
	if !strings.HasPrefix(uri, gcsScheme) {
		return "", "", false
	}

	bucket, object, found := strings.Cut(strings.TrimPrefix(uri, gcsScheme), "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}

	return bucket, object, true
}

// downloadObject is swapped out in tests.
var downloadObject = func(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, fmt.Errorf("%w: gs://%s/%s", ErrSourceNotFound, bucketName, objectName)
	} else if err != nil {
		return nil, fmt.Errorf("open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object: %w", err)
	}

	return data, nil
}
