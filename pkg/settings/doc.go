// Package settings reconciles a repository with its settings document.
//
// A run locates exactly one of .config/settings.{json,json5,yaml,yml}, decodes it,
// validates it against an embedded JSON schema and then walks the document
// section by section. Plain repository fields are staged on a single patch
// submitted at the end; topics, Dependabot toggles and branch protection go
// through their own calls as soon as their section is reached. Leaves that are
// absent from the document are never changed.
package settings
