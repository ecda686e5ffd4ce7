// Package azure provides the Azure Blob Storage implementation of
// blobstore.Store.
//
// Usage:
//
//	cfg := azure.DefaultConfig("myaccount", "base64key==")
//	store, err := azure.New(cfg)
//	if err != nil { ... }
//
//	info, err := store.Stat(ctx, "mycontainer", "raw/data.csv")
package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/sealdb/azurefs/internal/blobstore"
	"github.com/sealdb/azurefs/internal/errs"
)

// DefaultEndpoint is the public Azure blob endpoint suffix.
const DefaultEndpoint = "blob.core.windows.net"

// Config holds all settings needed to connect to one storage account.
type Config struct {
	// AccountName is the storage account to address.
	AccountName string

	// AccountKey is the shared key for AccountName. Leave empty when
	// ConnectionString is set.
	AccountKey string

	// Endpoint is the blob endpoint suffix. Defaults to DefaultEndpoint;
	// override for sovereign clouds or Azurite.
	Endpoint string

	// ConnectionString, when set, takes precedence over the shared-key
	// fields above.
	ConnectionString string
}

// DefaultConfig returns a shared-key Config against the public endpoint.
func DefaultConfig(accountName, accountKey string) *Config {
	return &Config{
		AccountName: accountName,
		AccountKey:  accountKey,
		Endpoint:    DefaultEndpoint,
	}
}

// Driver is the Azure Blob Storage implementation of blobstore.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client *azblob.Client
}

// New builds a Driver from cfg. No network call is made; authentication
// failures surface on the first operation.
func New(cfg *Config) (*Driver, error) {
	if cfg == nil {
		return nil, errs.New(errs.KindConfig, "azure: config is required")
	}

	if cfg.ConnectionString != "" {
		client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
		if err != nil {
			return nil, errs.Wrap(errs.KindConfig, "azure: invalid connection string", err)
		}
		return &Driver{client: client}, nil
	}

	if cfg.AccountName == "" || cfg.AccountKey == "" {
		return nil, errs.New(errs.KindConfig, "azure: account name and key are required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	serviceURL := fmt.Sprintf("https://%s.%s/", cfg.AccountName, endpoint)

	cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, "azure: invalid shared key credential", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, "azure: failed to create client", err)
	}

	return &Driver{client: client}, nil
}

// --- blobstore.Store implementation ---

// Stat returns metadata for the blob at key inside container.
func (d *Driver) Stat(ctx context.Context, containerName, key string) (*blobstore.ObjectInfo, error) {
	bc := d.blobClient(containerName, key)

	props, err := bc.GetProperties(ctx, nil)
	if err != nil {
		return nil, mapError(err, "failed to fetch blob properties")
	}

	info := &blobstore.ObjectInfo{Key: key}
	if props.ContentLength != nil {
		info.Size = *props.ContentLength
	}
	if props.LastModified != nil {
		info.LastModified = *props.LastModified
	}
	if props.ContentType != nil {
		info.ContentType = *props.ContentType
	}
	if props.ETag != nil {
		info.ETag = string(*props.ETag)
	}
	return info, nil
}

// DownloadRange fills dst with the blob bytes [offset, offset+len(dst)).
func (d *Driver) DownloadRange(ctx context.Context, containerName, key string, dst []byte, offset int64, opts blobstore.RangeOptions) (int64, error) {
	bc := d.blobClient(containerName, key)

	dlOpts := &blob.DownloadBufferOptions{
		Range: blob.HTTPRange{
			Offset: offset,
			Count:  int64(len(dst)),
		},
	}
	if opts.Concurrency > 0 {
		dlOpts.Concurrency = uint16(opts.Concurrency)
	}
	if opts.ChunkSize > 0 {
		dlOpts.BlockSize = opts.ChunkSize
	}

	n, err := bc.DownloadBuffer(ctx, dst, dlOpts)
	if err != nil {
		return 0, mapError(err, "range download failed")
	}
	return n, nil
}

// ListPage returns one page of blobs in container matching opts.
func (d *Driver) ListPage(ctx context.Context, containerName string, opts blobstore.ListOptions) (*blobstore.Page, error) {
	cc := d.client.ServiceClient().NewContainerClient(containerName)

	listOpts := &container.ListBlobsFlatOptions{}
	if opts.Prefix != "" {
		listOpts.Prefix = &opts.Prefix
	}
	if opts.Marker != "" {
		listOpts.Marker = &opts.Marker
	}
	if opts.MaxResults > 0 {
		listOpts.MaxResults = &opts.MaxResults
	}

	// One SDK page per call; the filesystem layer drives the continuation
	// token loop so a listing failure can abort the whole glob.
	pager := cc.NewListBlobsFlatPager(listOpts)
	resp, err := pager.NextPage(ctx)
	if err != nil {
		return nil, mapError(err, "failed to list blobs")
	}

	page := &blobstore.Page{}
	if resp.Segment != nil {
		page.Items = make([]blobstore.ObjectInfo, 0, len(resp.Segment.BlobItems))
		for _, item := range resp.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			info := blobstore.ObjectInfo{Key: *item.Name}
			if item.Properties != nil {
				if item.Properties.ContentLength != nil {
					info.Size = *item.Properties.ContentLength
				}
				if item.Properties.LastModified != nil {
					info.LastModified = *item.Properties.LastModified
				}
				if item.Properties.ContentType != nil {
					info.ContentType = *item.Properties.ContentType
				}
			}
			page.Items = append(page.Items, info)
		}
	}
	if resp.NextMarker != nil {
		page.NextMarker = *resp.NextMarker
	}
	return page, nil
}

func (d *Driver) blobClient(containerName, key string) *blob.Client {
	return d.client.ServiceClient().NewContainerClient(containerName).NewBlobClient(key)
}
