package exchange

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Cubernator/MeshReduction/geom"
)

var (
	// ErrInvalidVertex is returned for a "v" line that does not carry
	// exactly three parseable floats.
	ErrInvalidVertex = errors.New("exchange: malformed OBJ vertex line")

	// ErrInvalidFace is returned for an "f" line whose vertex references
	// don't parse as positive integers.
	ErrInvalidFace = errors.New("exchange: malformed OBJ face line")
)

// ReadOBJ scans an ASCII Wavefront OBJ stream directly into a
// TriangleSoup -- there is no intermediate staging reader; each
// recognized line mutates the soup as it is scanned. Only "v", "f",
// "g" and "o" lines are interpreted; everything else (comments, "vn",
// "vt", "mtllib", ...) is skipped. A face that isn't a triangle fails
// immediately with ErrNonTriangular, at the line that introduced it,
// rather than after the whole file has been staged.
func ReadOBJ(r io.Reader) (TriangleSoup, error) {
	var soup TriangleSoup

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		var err error

		switch fields[0] {
		case "v":
			err = soup.appendOBJVertex(fields[1:])
		case "f":
			err = soup.appendOBJFace(fields[1:])
		case "g", "o":
			soup.Name = strings.Join(fields[1:], " ")
		}

		if err != nil {
			return TriangleSoup{}, fmt.Errorf("exchange: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return TriangleSoup{}, err
	}

	return soup, nil
}

// appendOBJVertex parses a "v x y z" line's fields (prefix already
// stripped) and appends the resulting position.
func (s *TriangleSoup) appendOBJVertex(fields []string) error {
	if len(fields) != 3 {
		return ErrInvalidVertex
	}

	var xyz [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return ErrInvalidVertex
		}
		xyz[i] = v
	}

	s.Positions = append(s.Positions, geom.NewVector(xyz[0], xyz[1], xyz[2]))
	return nil
}

// appendOBJFace parses an "f a b c" line's fields (prefix already
// stripped), discarding any "/vt/vn" suffix on each reference, and
// appends the resulting triangle. A reference count other than 3 is
// reported as ErrNonTriangular rather than ErrInvalidFace, since it's
// the shape this module's core cannot represent, not a parse failure.
func (s *TriangleSoup) appendOBJFace(fields []string) error {
	if len(fields) != 3 {
		return ErrNonTriangular
	}

	var tri [3]int
	for i, f := range fields {
		ref, _, _ := strings.Cut(f, "/")

		idx, err := strconv.Atoi(ref)
		if err != nil || idx <= 0 {
			return ErrInvalidFace
		}
		tri[i] = idx - 1
	}

	s.Faces = append(s.Faces, tri)
	return nil
}

// ReadOBJPath reads a TriangleSoup from a path, transparently
// decompressing ".gz" files, and names the soup after the file's base
// name (stripped of extension) when the file carries no "g"/"o" line.
func ReadOBJPath(path string) (TriangleSoup, error) {
	file, err := os.Open(path)
	if err != nil {
		return TriangleSoup{}, err
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.ToLower(filepath.Ext(path)) == ".gz" {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return TriangleSoup{}, err
		}
		defer gz.Close()
		reader = gz
	}

	soup, err := ReadOBJ(reader)
	if err != nil {
		return TriangleSoup{}, err
	}
	if soup.Name == "" {
		soup.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return soup, nil
}

// WriteOBJ writes soup as an ASCII OBJ stream: an optional "g" line,
// one "v" line per position, one "f" line per triangle (1-based
// indices).
func WriteOBJ(w io.Writer, soup TriangleSoup) error {
	bw := bufio.NewWriter(w)

	if soup.Name != "" {
		if _, err := fmt.Fprintf(bw, "g %s\n", soup.Name); err != nil {
			return err
		}
	}

	for _, p := range soup.Positions {
		if _, err := fmt.Fprintf(bw, "v %g %g %g\n", p.X(), p.Y(), p.Z()); err != nil {
			return err
		}
	}

	for _, f := range soup.Faces {
		if _, err := fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteOBJPath writes soup to path, gzip-compressing the stream when
// the extension is ".gz".
func WriteOBJPath(path string, soup TriangleSoup) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var w io.Writer = file
	if strings.ToLower(filepath.Ext(path)) == ".gz" {
		gz := gzip.NewWriter(file)
		defer gz.Close()
		w = gz
	}

	return WriteOBJ(w, soup)
}
