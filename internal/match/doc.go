// Package match ranks known names against a misspelled one so that hint
// diagnostics can say "did you mean".
package match
