//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

// Default target when mage is run without arguments.
var Default = Build

// Build compiles the modeler binary into bin/.
func Build() error {
	mg.Deps(Vet)
	fmt.Println("Build modeler...")
	return goCmd(true, "build", "-o", "bin/modeler", "./cmd/modeler")
}

// Test runs every package's tests with the race detector.
func Test() error {
	return goCmd(true, "test", "-race", "./...")
}

// Cover writes a coverage profile to coverage.out.
func Cover() error {
	return goCmd(false, "test", "-coverprofile=coverage.out", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return goCmd(false, "vet", "./...")
}

// Tidy runs go mod tidy.
func Tidy() error {
	if err := goCmd(false, "mod", "tidy"); err != nil {
		return fmt.Errorf("failed to run go mod tidy: %w", err)
	}
	return nil
}
