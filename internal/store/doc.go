// Package store retains generated reports between the upload that produced
// them and the download that fetches them. Nothing survives a restart.
package store
