// Package graphio loads graphs and A* coordinates from disk: a from-scratch
// binary CSR layout (not the Galois .gr format byte-for-byte), read with
// encoding/binary field by field.
package graphio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/khryptorgraphics/galois-scheduler/internal/galoiserr"
	"github.com/khryptorgraphics/galois-scheduler/internal/graph"
)

// header is the fixed CSR file prologue: node and edge counts.
type header struct {
	NumNodes uint64
	NumEdges uint64
}

// LoadCSR reads a binary CSR graph: an 8-byte node count, an 8-byte edge
// count, NumNodes+1 uint64 row offsets, NumEdges uint32 destinations, and
// NumEdges uint32 weights, all little-endian.
func LoadCSR(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, galoiserr.New(galoiserr.KindInput, "graphio.LoadCSR", err)
	}
	defer f.Close()

	rowStart, dst, weight, err := readCSRBody(f)
	if err != nil {
		return nil, galoiserr.New(galoiserr.KindInput, "graphio.LoadCSR", err)
	}
	return graph.New(rowStart, dst, weight), nil
}

func readCSRBody(r io.Reader) (rowStart []uint64, dst []graph.NodeID, weight []uint32, err error) {
	var h header
	if err = binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, nil, nil, fmt.Errorf("read header: %w", err)
	}

	rowStart = make([]uint64, h.NumNodes+1)
	if err = binary.Read(r, binary.LittleEndian, rowStart); err != nil {
		return nil, nil, nil, fmt.Errorf("read row offsets: %w", err)
	}
	if rowStart[h.NumNodes] != h.NumEdges {
		return nil, nil, nil, fmt.Errorf("row offsets disagree with edge count: %d vs %d", rowStart[h.NumNodes], h.NumEdges)
	}

	rawDst := make([]uint32, h.NumEdges)
	if err = binary.Read(r, binary.LittleEndian, rawDst); err != nil {
		return nil, nil, nil, fmt.Errorf("read edge destinations: %w", err)
	}
	dst = make([]graph.NodeID, len(rawDst))
	for i, v := range rawDst {
		dst[i] = graph.NodeID(v)
	}

	weight = make([]uint32, h.NumEdges)
	if err = binary.Read(r, binary.LittleEndian, weight); err != nil {
		return nil, nil, nil, fmt.Errorf("read edge weights: %w", err)
	}
	return rowStart, dst, weight, nil
}

// LoadTransposeInto reads a second binary CSR file (the reverse adjacency)
// and attaches it to g for algorithms that need in-degree/in-neighbors.
func LoadTransposeInto(g *graph.Graph, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return galoiserr.New(galoiserr.KindInput, "graphio.LoadTransposeInto", err)
	}
	defer f.Close()

	rowStart, dst, _, err := readCSRBody(f)
	if err != nil {
		return galoiserr.New(galoiserr.KindInput, "graphio.LoadTransposeInto", err)
	}
	g.SetTranspose(rowStart, dst)
	return nil
}

// LoadCoords reads an A* coordinate file: one line per node,
// "v <id> <x> <y>" with x/y decimal integer micro-degrees, and sets each
// node's coordinate pair on g.
func LoadCoords(g *graph.Graph, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return galoiserr.New(galoiserr.KindInput, "graphio.LoadCoords", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 || fields[0] != "v" {
			return galoiserr.New(galoiserr.KindInput, "graphio.LoadCoords",
				fmt.Errorf("line %d: expected \"v <id> <x> <y>\", got %q", lineNo, line))
		}
		id, err1 := strconv.ParseUint(fields[1], 10, 32)
		x, err2 := strconv.ParseInt(fields[2], 10, 32)
		y, err3 := strconv.ParseInt(fields[3], 10, 32)
		if err1 != nil || err2 != nil || err3 != nil {
			return galoiserr.New(galoiserr.KindInput, "graphio.LoadCoords",
				fmt.Errorf("line %d: malformed coordinate fields", lineNo))
		}
		if int(id) >= g.NumNodes() {
			return galoiserr.New(galoiserr.KindInput, "graphio.LoadCoords",
				fmt.Errorf("line %d: node id %d out of range", lineNo, id))
		}
		g.SetCoord(graph.NodeID(id), int32(x), int32(y))
	}
	if err := sc.Err(); err != nil {
		return galoiserr.New(galoiserr.KindInput, "graphio.LoadCoords", err)
	}
	return nil
}
