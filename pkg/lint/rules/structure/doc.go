// Package structure implements rules about model file structure.
package structure
