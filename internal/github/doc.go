// Package github provides a minimal GitHub REST API client for fetching
// pull-request diffs and posting review results back as PR reviews.
//
// The repository is detected from the local git remote; authentication
// uses the GITHUB_TOKEN environment variable. [BuildReview] turns a
// finished result into the wire shape: markdown report body plus inline
// comments anchored to diff lines.
package github
