package azurefs

import (
	"strings"

	"github.com/sealdb/azurefs/internal/errs"
)

const (
	schemeAzure = "azure://"
	schemeAz    = "az://"
)

// Location is the parsed form of an azure:// or az:// URL.
//
// Two addressing styles are recognized:
//
//	azure://container/path/to/blob                          (shorthand)
//	azure://account.blob.core.windows.net/container/blob    (fully qualified)
//
// The shorthand form carries no account; the account is whatever the
// connect function was configured with. Location is immutable once parsed.
type Location struct {
	// Prefix is the scheme prefix the input used ("azure://" or "az://").
	Prefix string

	// AccountName is the storage account, only set in the fully
	// qualified form.
	AccountName string

	// Endpoint is the endpoint suffix after the account name (e.g.
	// "blob.core.windows.net"), only set in the fully qualified form.
	Endpoint string

	// Container is the blob container.
	Container string

	// Path is the blob key, possibly containing glob wildcards.
	Path string

	// FullyQualified reports which addressing style the input used.
	FullyQualified bool
}

// CanHandle reports whether path uses one of the two URL schemes this
// filesystem serves.
func CanHandle(path string) bool {
	return strings.HasPrefix(path, schemeAzure) || strings.HasPrefix(path, schemeAz)
}

// ParseURL splits an azure:// or az:// URL into its Location components.
func ParseURL(rawURL string) (Location, error) {
	var loc Location

	var rest string
	switch {
	case strings.HasPrefix(rawURL, schemeAzure):
		loc.Prefix = schemeAzure
		rest = rawURL[len(schemeAzure):]
	case strings.HasPrefix(rawURL, schemeAz):
		loc.Prefix = schemeAz
		rest = rawURL[len(schemeAz):]
	default:
		return Location{}, errs.New(errs.KindIO, "URL needs to start with azure:// or az://").WithPath(rawURL)
	}

	authority, remainder, _ := strings.Cut(rest, "/")
	if authority == "" {
		return Location{}, errs.New(errs.KindIO, "URL is missing a container name").WithPath(rawURL)
	}

	// A dot in the first component means host addressing:
	// <account>.<endpoint>/<container>/<path>.
	if account, endpoint, ok := strings.Cut(authority, "."); ok {
		if account == "" || endpoint == "" {
			return Location{}, errs.New(errs.KindIO, "URL has a malformed account endpoint").WithPath(rawURL)
		}
		loc.FullyQualified = true
		loc.AccountName = account
		loc.Endpoint = endpoint

		container, path, _ := strings.Cut(remainder, "/")
		if container == "" {
			return Location{}, errs.New(errs.KindIO, "URL is missing a container name").WithPath(rawURL)
		}
		loc.Container = container
		loc.Path = path
		return loc, nil
	}

	loc.Container = authority
	loc.Path = remainder
	return loc, nil
}

// KeyURL rebuilds a fully addressed URL for key, using the same
// addressing style as the original input. Glob results are reconstructed
// with it so they can be re-opened verbatim.
func (l Location) KeyURL(key string) string {
	if l.FullyQualified {
		return l.Prefix + l.AccountName + "." + l.Endpoint + "/" + l.Container + "/" + key
	}
	return l.Prefix + l.Container + "/" + key
}
