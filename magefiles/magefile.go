//go:build mage

// Package main provides build targets for breathpacer using Mage.
//
// Usage:
//
//	mage build      Compile the breathpacer binary to bin/
//	mage test       Run all tests
//	mage race       Run all tests with the race detector
//	mage cover      Write a coverage profile to bin/cover.out
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install breathpacer to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "breathpacer"
	binaryDir  = "bin"
	cmdDir     = "./cmd"
	binGo      = "go"
	binLint    = "golangci-lint"
)

// Build compiles the breathpacer binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs all tests with the race detector. The pacer and animation
// packages schedule work on goroutines.
func Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Cover writes a coverage profile and prints the per-function summary.
func Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, "cover.out")
	if err := sh.RunV(binGo, "test", "-coverprofile", profile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func", profile)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}

// Install builds and installs breathpacer to GOPATH/bin.
func Install() error {
	mg.Deps(Test)
	return sh.RunV(binGo, "build", "-o", filepath.Join(gopathBin(), binaryName), cmdDir)
}

func gopathBin() string {
	if gobin := os.Getenv("GOBIN"); gobin != "" {
		return gobin
	}
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil || gopath == "" {
		return binaryDir
	}
	return filepath.Join(gopath, "bin")
}
