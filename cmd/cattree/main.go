// Package main implements cattree, which converts flat Elaf category exports
// into nested trees and trims brand exports.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
