// Package diagnostic provides structured infos, warnings and errors
// collected while manufacturing fixtures and validating hint files.
//
// Key capabilities:
//   - Members left unset, with the reason
//   - Construction candidates that failed softly
//   - Recursion depth cut-offs and delegate fallbacks
//   - Unresolved type parameters and raw containers
//   - Unknown names in sidecar hint files, with suggestions
package diagnostic
