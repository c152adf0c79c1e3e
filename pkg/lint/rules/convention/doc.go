// Package convention implements rules about SQL conventions, checked as
// simple scans over the token stream.
package convention
