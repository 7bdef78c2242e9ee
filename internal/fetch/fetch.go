// Package fetch downloads the published OWASP ASVS CSV exports.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// catalogURLs pins the published CSV export for each supported ASVS
// version. The checklist columns depend on the exact column layout of
// these files, so the URLs name a release tag, never a branch.
var catalogURLs = map[int]string{
	4: "https://raw.githubusercontent.com/OWASP/ASVS/v4.0.3/4.0/docs_en/OWASP%20Application%20Security%20Verification%20Standard%204.0.3-en.csv",
	5: "https://raw.githubusercontent.com/OWASP/ASVS/v5.0.0/5.0/docs_en/OWASP_Application_Security_Verification_Standard_5.0.0_en.csv",
}

// CatalogURL returns the download URL for the given ASVS version.
func CatalogURL(version int) (string, error) {
	u, ok := catalogURLs[version]
	if !ok {
		return "", fmt.Errorf("no catalog URL for ASVS version %d", version)
	}
	return u, nil
}

// SetCatalogURL overrides the download URL for the given version.
// This is intended for pointing tests at mock servers.
func SetCatalogURL(version int, u string) {
	catalogURLs[version] = u
}

// sharedHTTPClient is reused across downloads. The exports are well
// under a megabyte, so a minute covers slow links with margin.
var sharedHTTPClient = &http.Client{Timeout: time.Minute}

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 * 1024 * 1024 // 10 MiB

// Catalog downloads the raw CSV export for the given ASVS version.
// Any transport failure or non-OK status is an immediate error; there
// are no retries.
func Catalog(ctx context.Context, version int) (string, error) {
	u, err := CatalogURL(version)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, u)
	}

	return string(body), nil
}
