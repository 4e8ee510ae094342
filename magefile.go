//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target when running mage without arguments.
var Default = Build

// binaries maps output names to their main packages.
var binaries = []struct{ name, pkg string }{
	{"server", "./cmd/server"},
	{"paymentctl", "./cmd/paymentctl"},
}

const (
	wireDir  = "./internal/app"
	swagDirs = "./cmd/server,./internal/adapter/inbound/http"
	swagOut  = "./cmd/server/docs"
)

// Build builds the server and paymentctl binaries into bin/.
func Build() error {
	mg.Deps(Generate)
	for _, b := range binaries {
		fmt.Printf("Building %s...\n", b.name)
		if err := sh.Run("go", "build", "-o", "bin/"+b.name, b.pkg); err != nil {
			return fmt.Errorf("build %s: %w", b.name, err)
		}
	}
	return nil
}

// Generate regenerates wire_gen.go and the swagger docs.
func Generate() {
	mg.Deps(Wire, Swag)
}

// Wire regenerates the injector in internal/app.
func Wire() error {
	fmt.Println("Running wire...")
	return sh.Run("wire", wireDir)
}

// Swag regenerates the swagger docs from handler annotations.
func Swag() error {
	fmt.Println("Running swag...")
	return sh.Run("swag", "init",
		"-g", "docs.go",
		"-d", swagDirs,
		"-o", swagOut,
		"--parseInternal",
		"--outputTypes", "go",
	)
}

// Test runs all tests.
func Test() error {
	fmt.Println("Running tests...")
	return sh.Run("go", "test", "-v", "./...")
}

// TestCover runs tests with coverage.
func TestCover() error {
	fmt.Println("Running tests with coverage...")
	return sh.Run("go", "test", "-race", "-cover", "-coverprofile=coverage.out", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	fmt.Println("Running linter...")
	return sh.Run("golangci-lint", "run", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.Run("go", "vet", "./...")
}

// Clean removes build artifacts. Generated sources are checked in and kept.
func Clean() error {
	fmt.Println("Cleaning...")
	if err := os.RemoveAll("bin"); err != nil {
		return err
	}
	return sh.Rm("coverage.out")
}

// Tidy runs go mod tidy.
func Tidy() error {
	return sh.Run("go", "mod", "tidy")
}

// CI runs tidy, generate, vet and tests with coverage.
func CI() {
	mg.SerialDeps(Tidy, Generate, Vet, TestCover)
}

// Dev builds and runs the server against ./configs/config.yaml.
func Dev() error {
	mg.Deps(Build)
	fmt.Println("Starting server...")
	return sh.RunV("./bin/server")
}

// Ctl groups paymentctl maintenance targets.
type Ctl mg.Namespace

// SyncPlans backfills the plan catalogue of a gateway.
func (Ctl) SyncPlans(gateway string) error {
	mg.Deps(Build)
	return sh.RunV("./bin/paymentctl", "sync-plans", "--gateway", gateway)
}

// SyncPaymentMethods re-syncs stored payment methods of a gateway.
func (Ctl) SyncPaymentMethods(gateway string) error {
	mg.Deps(Build)
	return sh.RunV("./bin/paymentctl", "sync-payment-methods", "--gateway", gateway)
}

// Install installs the code generators and linter.
func Install() error {
	tools := []string{
		"github.com/google/wire/cmd/wire@latest",
		"github.com/swaggo/swag/cmd/swag@latest",
		"github.com/golangci/golangci-lint/cmd/golangci-lint@latest",
	}
	for _, tool := range tools {
		fmt.Printf("Installing %s\n", tool)
		if err := sh.Run("go", "install", tool); err != nil {
			return fmt.Errorf("install %s: %w", tool, err)
		}
	}
	return nil
}
