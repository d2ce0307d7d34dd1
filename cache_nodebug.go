//go:build !projdebug && !ios && !android && (amd64 || arm64)

package projgo

func (c *sharedCache) checkConsistency() {}
