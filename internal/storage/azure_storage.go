package storage

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

const blobHostSuffix = ".blob.core.windows.net"

// AzureImageFetcher downloads images from Azure Blob Storage with a shared key
type AzureImageFetcher struct {
	client  *azblob.Client
	account string
	limits  fetchLimits
}

// NewAzureImageFetcher creates a fetcher for the given storage account
func NewAzureImageFetcher(accountName, accountKey string, opts ...FetchOption) (*AzureImageFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid storage credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s%s", accountName, blobHostSuffix),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &AzureImageFetcher{client: client, account: accountName, limits: newFetchLimits(opts)}, nil
}

// Handles reports whether blobURL points at this fetcher's storage account
func (s *AzureImageFetcher) Handles(blobURL string) bool {
	u, err := url.Parse(blobURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), s.account+blobHostSuffix)
}

// FetchImage downloads and decodes https://<account>.blob.core.windows.net/<container>/<blob>
func (s *AzureImageFetcher) FetchImage(ctx context.Context, blobURL string) (image.Image, error) {
	containerName, blobName, err := ParseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	img, _, err := DecodeImage(resp.Body, s.limits.maxPixels)
	return img, err
}

// IsBlobURL reports whether rawURL has an Azure Blob Storage host
func IsBlobURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Hostname()), blobHostSuffix)
}

// ParseBlobURL splits a blob URL path into container and blob name
func ParseBlobURL(blobURL string) (string, string, error) {
	u, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}

	containerName, blobName, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if !ok || containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("invalid blob URL %q: expected /<container>/<blob>", blobURL)
	}
	return containerName, blobName, nil
}
