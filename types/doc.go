// Package types provides core types shared across the ragent service.
// This package has ZERO dependencies on other ragent packages to avoid
// circular imports. All other packages should import types from here.
package types
