// Command decimate reduces the triangle count of an OBJ mesh using
// quadric error metric pair contraction.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Cubernator/MeshReduction/driver"
	"github.com/Cubernator/MeshReduction/exchange"
)

func main() {
	var (
		inPath      = flag.String("in", "", "input OBJ path (.obj or .obj.gz)")
		outPath     = flag.String("out", "", "output OBJ path (.obj or .obj.gz)")
		target      = flag.Int("target", 0, "target triangle count")
		weldEpsilon = flag.Float64("weld", 0, "merge vertices closer than this distance before building the mesh (0 disables welding)")
	)
	flag.Parse()

	if *inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: decimate -in mesh.obj -out reduced.obj -target 5000")
		os.Exit(2)
	}

	if err := run(*inPath, *outPath, *target, *weldEpsilon); err != nil {
		log.Fatal(err)
	}
}

func run(inPath, outPath string, target int, weldEpsilon float64) error {
	soup, err := exchange.ReadOBJPath(inPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}

	if weldEpsilon > 0 {
		soup = exchange.Weld(soup, weldEpsilon)
	}

	mesh, err := exchange.ToMesh(soup)
	if err != nil {
		return fmt.Errorf("build mesh: %w", err)
	}

	d := driver.New()
	stats, err := d.Start(mesh, target, func(p float64) bool {
		fmt.Fprintf(os.Stderr, "\rdecimating... %.0f%%", p*100)
		return true
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("decimate: %w", err)
	}

	log.Printf("reduced %d -> %d faces (target %d)", stats.InitialFaces, stats.FinalFaces, stats.TargetFaces)

	out := exchange.ToTriangleSoup(mesh, soup.Name, soup.MaterialIdx)
	if err := exchange.WriteOBJPath(outPath, out); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	return nil
}
