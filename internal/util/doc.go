// Package util holds small internal helpers shared across packages.
package util
