//go:build !linux

package runners

import "github.com/wispworks/wisp/logs"

// applySandbox is a no-op on non-Linux platforms.
func applySandbox(logger logs.Logger) error {
	return nil
}
