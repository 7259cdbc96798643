//go:build mage

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// goCmd runs the go tool. Output is shown live under mage -v or when
// stream is set, and otherwise only when the command fails.
func goCmd(stream bool, args ...string) error {
	fmt.Printf("Executing: go %s\n", strings.Join(args, " "))
	if stream || mg.Verbose() {
		if err := sh.RunV("go", args...); err != nil {
			return fmt.Errorf("go %s: %w", args[0], err)
		}
		return nil
	}
	out, err := sh.Output("go", args...)
	if err != nil {
		fmt.Println("... failed command output:")
		fmt.Println(out)
		return fmt.Errorf("go %s: %w", args[0], err)
	}
	return nil
}
