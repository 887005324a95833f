// Package version holds the fasteval CLI's own version string.
package version

// Current is the version reported by `fasteval --version`.
const Current = "0.1.0"
