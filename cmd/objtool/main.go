// objtool is a CLI utility for inspecting and validating OBJ meshes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/auction-house/internal/engine/model"
	"github.com/Faultbox/auction-house/pkg/formats"
)

// errChecksFailed is returned by check when at least one file failed.
var errChecksFailed = errors.New("some files failed")

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args, os.Stdout)
	case "dump":
		err = cmdDump(args, os.Stdout)
	case "check":
		err = cmdCheck(args, os.Stdout)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objtool - Wavefront OBJ mesh utility

Usage:
  objtool <command> [options]

Commands:
  info <file.obj>             Show pool sizes, face count and bounds
  dump [-n N] <file.obj>      Print assembled vertices (first N, 0 = all)
  check <file.obj>...         Parse and assemble files, exit 1 on any error

Examples:
  objtool info obj/train.obj
  objtool dump -n 12 obj/chair.obj
  objtool check obj/*.obj`)
}

func cmdInfo(args []string, w io.Writer) error {
	if len(args) < 1 {
		return errors.New("usage: objtool info <file.obj>")
	}
	path := args[0]

	obj, err := formats.ParseOBJFile(path)
	if err != nil {
		return err
	}
	mesh, err := model.BuildMesh(obj)
	if err != nil {
		return fmt.Errorf("assembling %s: %w", path, err)
	}

	stats := obj.Stats()
	fmt.Fprintf(w, "File:      %s\n", path)
	fmt.Fprintf(w, "Positions: %d\n", stats.Positions)
	fmt.Fprintf(w, "TexCoords: %d\n", stats.TexCoords)
	fmt.Fprintf(w, "Normals:   %d\n", stats.Normals)
	fmt.Fprintf(w, "Faces:     %d\n", stats.Faces)
	fmt.Fprintf(w, "Vertices:  %d (%d bytes)\n", mesh.VertexCount(), mesh.VertexCount()*model.VertexStride)
	if mesh.VertexCount() > 0 {
		b := mesh.Bounds
		fmt.Fprintf(w, "Bounds:    min %s  max %s\n", fmtVec3(b.Min), fmtVec3(b.Max))
		fmt.Fprintf(w, "Size:      %s\n", fmtVec3(b.Size()))
		fmt.Fprintf(w, "Center:    %s\n", fmtVec3(b.Center()))
	}
	return nil
}

func cmdDump(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	limit := fs.Int("n", 0, "Limit output to N vertices (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return errors.New("usage: objtool dump [-n N] <file.obj>")
	}

	mesh, err := model.LoadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	count := mesh.VertexCount()
	if *limit > 0 && *limit < count {
		count = *limit
	}

	fmt.Fprintf(w, "%6s  %-30s  %-30s  %s\n", "#", "position", "normal", "texcoord")
	for i := 0; i < count; i++ {
		v := mesh.Vertices[i]
		fmt.Fprintf(w, "%6d  %-30s  %-30s  (%.4f, %.4f)\n",
			i, fmtVec3(v.Position), fmtVec3(v.Normal), v.TexCoord[0], v.TexCoord[1])
	}
	if count < mesh.VertexCount() {
		fmt.Fprintf(w, "... %d more\n", mesh.VertexCount()-count)
	}
	return nil
}

type checkResult struct {
	vertices int
	err      error
}

func cmdCheck(args []string, w io.Writer) error {
	if len(args) < 1 {
		return errors.New("usage: objtool check <file.obj>...")
	}

	results := make([]checkResult, len(args))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			obj, err := formats.ParseOBJFile(path)
			if err == nil {
				var mesh *model.Mesh
				mesh, err = model.BuildMesh(obj)
				if err == nil {
					results[i].vertices = mesh.VertexCount()
				}
			}
			results[i].err = err
			return nil
		})
	}
	g.Wait()

	failed := 0
	for i, path := range args {
		r := results[i]
		if r.err != nil {
			failed++
			fmt.Fprintf(w, "FAIL  %s: %v\n", path, r.err)
			continue
		}
		fmt.Fprintf(w, "ok    %s (%d vertices)\n", path, r.vertices)
	}

	fmt.Fprintf(w, "\n%d checked, %d failed\n", len(args), failed)
	if failed > 0 {
		return errChecksFailed
	}
	return nil
}

func fmtVec3(v [3]float32) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v[0], v[1], v[2])
}
