package xerr

import (
	"net/url"
	"strings"
)

// Mask replaces the userinfo component of a URI with "***" so credentials
// embedded in a connection string never reach log or error output (§5
// "Secret handling"). Non-URI input is returned unchanged.
func Mask(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	// The mask is spliced in after rendering: url.URL.String would
	// percent-encode "*" inside userinfo as "%2A".
	masked := "***@"
	if _, hasPassword := u.User.Password(); hasPassword {
		masked = "***:***@"
	}
	u.User = nil
	return strings.Replace(u.String(), "://", "://"+masked, 1)
}
