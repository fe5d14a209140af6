// Package naming provides consistent naming functions for deployment resources.
//
// Channel names follow the pattern {environment}-{timestamp}-{8char} so every
// run provisions its own notification resources without collisions. Published
// template artifacts are content-addressed with a hash prefix so an unchanged
// template maps to the same key across runs.
package naming
