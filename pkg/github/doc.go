// Package github provides the GitHub REST collaborator used by safe-settings.
// It wraps go-github with typed errors, pacing once the remaining rate-limit
// quota runs low and retries for rate-limit and network failures. On top of
// that it exposes the small set of repository operations a settings
// reconciliation run needs:
// - reading files through the contents API
// - reading and patching repository settings
// - replacing topics
// - toggling Dependabot alerts and security updates
// - reading and updating classic branch protection
package github
