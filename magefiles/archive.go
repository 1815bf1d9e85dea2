//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Archive builds the CLI and archives the sample vault.
func Archive() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "archive", "--vault", sampleDir)
}

// List builds the CLI and previews what Archive would move in the sample vault.
func List() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "list", "--vault", sampleDir)
}

// History builds the CLI and prints the sample vault's archive history.
func History() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "history", "list", "--vault", sampleDir)
}
