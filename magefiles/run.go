//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Viewer builds and starts the viewer. ASSETS overrides the asset directory.
func (Run) Viewer() error {
	mg.Deps(Build.Viewer)

	args := []string{"-debug"}
	if dir := os.Getenv("ASSETS"); dir != "" {
		args = append(args, "-assets", dir)
	}
	fmt.Println("Run viewer...")
	_, err := executeCmd("./"+binDir+"/auction-house", withArgs(args...), withStream())
	return err
}

// Check validates every OBJ file under ASSETS (default ".") with objtool.
func (Run) Check() error {
	mg.Deps(Build.Tools)

	dir := os.Getenv("ASSETS")
	if dir == "" {
		dir = "."
	}
	files, err := objFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .obj files under %s", dir)
	}
	_, err = executeCmd("./"+binDir+"/objtool", withArgs(append([]string{"check"}, files...)...), withStream())
	return err
}
