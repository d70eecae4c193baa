// Package validation checks board export names, files and output locations
// before the analyzer touches them.
package validation
