//go:build !darwin && !linux
// +build !darwin,!linux

package nettools

import "errors"

func setSockOpts(fd uintptr, opts Options) error { return nil }

func getSockOpts(fd uintptr) (Options, error) {
	return Options{}, errors.New("nettools: getsockopt not supported on this platform")
}
