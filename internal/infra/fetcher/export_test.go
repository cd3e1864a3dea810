package fetcher

import "context"

// ValidateURL exposes validateURL to the external test package.
func ValidateURL(ctx context.Context, urlStr string, denyPrivateIPs bool) error {
	return validateURL(ctx, urlStr, denyPrivateIPs)
}
