//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

const binDir = "bin"

type Build mg.Namespace

// Viewer builds the auction house viewer into bin/.
func (Build) Viewer() error {
	return goBuild("auction-house")
}

// Tools builds the command-line tools into bin/.
func (Build) Tools() error {
	return goBuild("objtool")
}

// All builds every binary.
func (Build) All() {
	mg.Deps(Build.Viewer, Build.Tools)
}

func goBuild(name string) error {
	out := filepath.Join(binDir, name)
	if _, err := executeCmd("go", withArgs("build", "-o", out, "./cmd/"+name), withStream()); err != nil {
		return err
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Lint runs go vet.
func Lint() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}
