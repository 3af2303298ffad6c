// Package build provides the version-to-build record model for Office 365 releases.
//
// A Record pairs a normalized four-component product version (16.0.<build>.<revision>)
// with the short build label printed on the Microsoft update history pages. Records are
// held in memory only; Normalize sorts a collection by version and drops duplicates.
package build
