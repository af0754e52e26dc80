package geometry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gogpu/beany/internal/asset"
	"github.com/gogpu/beany/internal/logging"
)

// ErrOpen is returned when the geometry file cannot be opened.
var ErrOpen = errors.New("geometry: cannot open file")

const (
	pointsHeader  = "[points]"
	indicesHeader = "[indices]"

	indicesPerLine = 3
)

type section int

const (
	sectionNone section = iota
	sectionPoints
	sectionIndices
)

// Load reads and parses the geometry file at path.
func Load(path string, logger *slog.Logger) (*Mesh, error) {
	f, err := asset.Open(path)
	if err != nil {
		logging.Or(logger).Error("geometry: failed to open file", "path", path, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("geometry: read %q: %w", path, err)
	}
	logging.Or(logger).Info("geometry: loaded",
		"path", path,
		"vertices", m.VertexCount(),
		"indices", m.IndexCount)
	return m, nil
}

// Parse parses geometry text from r. Only read errors are reported; malformed
// lines never fail the parse.
//
// Every data line yields exactly FloatsPerVertex floats in the points section
// and three indices in the indices section. Fields after the first missing or
// malformed one are zero, so a bad line never shifts the vertex stride.
func Parse(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	state := sectionNone

	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if raw != "" {
			line := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
			state = m.parseLine(state, line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	m.pad()
	return m, nil
}

func (m *Mesh) parseLine(state section, line string) section {
	switch {
	case line == pointsHeader:
		return sectionPoints
	case line == indicesHeader:
		return sectionIndices
	case line == "" || line[0] == '#':
	case state == sectionPoints:
		m.Points = appendFloats(m.Points, line, FloatsPerVertex)
	case state == sectionIndices:
		m.Indices = appendIndices(m.Indices, line, indicesPerLine)
	}
	return state
}

// appendFloats appends exactly n floats parsed from line. Missing fields and
// every field from the first malformed one on are zero.
func appendFloats(dst []float32, line string, n int) []float32 {
	fields := strings.Fields(line)
	ok := true
	for i := 0; i < n; i++ {
		var v float64
		if ok && i < len(fields) {
			var err error
			v, err = strconv.ParseFloat(fields[i], 32)
			ok = err == nil
			if !ok {
				v = 0
			}
		}
		dst = append(dst, float32(v))
	}
	return dst
}

// appendIndices appends exactly n uint16 values parsed from line. Missing
// fields and every field from the first one that is not an unsigned 16-bit
// integer on are zero.
func appendIndices(dst []uint16, line string, n int) []uint16 {
	fields := strings.Fields(line)
	ok := true
	for i := 0; i < n; i++ {
		var v uint64
		if ok && i < len(fields) {
			var err error
			v, err = strconv.ParseUint(strings.TrimPrefix(fields[i], "+"), 10, 16)
			ok = err == nil
			if !ok {
				v = 0
			}
		}
		dst = append(dst, uint16(v))
	}
	return dst
}
