// Package ingest reads Bookshelf-style VLSI netlist files (.aux/.nodes/.nets)
// into a circuit.Model.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fmcut/partitioner/internal/circuit"
	apperrors "github.com/fmcut/partitioner/pkg/errors"
)

// LoadAux reads the .aux file at auxPath, resolves the referenced .nodes and
// .nets files relative to its directory, parses both, and assembles a
// circuit.Model.
func LoadAux(ctx context.Context, auxPath string) (*circuit.Model, error) {
	nodesName, netsName, err := parseAux(auxPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(auxPath)
	cells, err := parseNodes(ctx, filepath.Join(dir, nodesName))
	if err != nil {
		return nil, err
	}

	nets, err := parseNets(ctx, filepath.Join(dir, netsName))
	if err != nil {
		return nil, err
	}

	m, err := circuit.NewModel(cells, nets)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInputMalformed, "netlist rejected by circuit model", err)
	}
	return m, nil
}

// parseAux scans every whitespace-separated token in auxPath and returns the
// first token ending in ".nodes" and the first ending in ".nets".
func parseAux(auxPath string) (nodesName, netsName string, err error) {
	f, err := os.Open(auxPath)
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.CodeInputNotFound, fmt.Sprintf("aux file %q", auxPath), err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		for _, tok := range strings.Fields(scanner.Text()) {
			if nodesName == "" && strings.HasSuffix(tok, ".nodes") {
				nodesName = tok
			}
			if netsName == "" && strings.HasSuffix(tok, ".nets") {
				netsName = tok
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", apperrors.Wrap(apperrors.CodeInputMalformed, fmt.Sprintf("reading aux file %q", auxPath), err)
	}
	if nodesName == "" || netsName == "" {
		return "", "", apperrors.New(apperrors.CodeInputMalformed,
			fmt.Sprintf("aux file %q does not reference both a .nodes and a .nets file", auxPath))
	}
	return nodesName, netsName, nil
}

// isNodesHeader reports whether a .nodes line is header boilerplate to skip.
func isNodesHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	return strings.Contains(line, "UCLA") || strings.Contains(line, "NumNodes") || strings.Contains(line, "NumTerminals")
}

// parseNodes reads a .nodes file into a slice of circuit.Cell.
func parseNodes(ctx context.Context, path string) ([]circuit.Cell, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInputNotFound, fmt.Sprintf("nodes file %q", path), err)
	}
	defer f.Close()

	var cells []circuit.Cell
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := scanner.Text()
		if isNodesHeader(line) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, apperrors.New(apperrors.CodeInputMalformed,
				fmt.Sprintf("%s:%d: expected \"<name> <width> <height> [kind]\", got %q", path, lineNum, line))
		}

		width, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInputMalformed, fmt.Sprintf("%s:%d: width %q", path, lineNum, fields[1]), err)
		}
		height, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInputMalformed, fmt.Sprintf("%s:%d: height %q", path, lineNum, fields[2]), err)
		}

		kind := circuit.Regular
		if len(fields) >= 4 {
			switch fields[3] {
			case "terminal":
				kind = circuit.Terminal
			case "terminal_NI":
				kind = circuit.TerminalNI
			default:
				return nil, apperrors.New(apperrors.CodeInputMalformed,
					fmt.Sprintf("%s:%d: unknown node flag %q", path, lineNum, fields[3]))
			}
		}

		cells = append(cells, circuit.Cell{
			Name:   fields[0],
			Width:  width,
			Height: height,
			Kind:   kind,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInputMalformed, fmt.Sprintf("reading nodes file %q", path), err)
	}
	return cells, nil
}

// isNetsHeader reports whether a .nets line is header boilerplate to skip.
func isNetsHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if strings.HasPrefix(trimmed, "#") {
		return true
	}
	return strings.Contains(line, "UCLA") || strings.Contains(line, "NumNets") || strings.Contains(line, "NumPins")
}

// parseNets reads a .nets file into a slice of circuit.Net.
func parseNets(ctx context.Context, path string) ([]circuit.Net, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInputNotFound, fmt.Sprintf("nets file %q", path), err)
	}
	defer f.Close()

	var nets []circuit.Net
	scanner := bufio.NewScanner(f)
	lineNum := 0

	nextLine := func() (string, bool) {
		for scanner.Scan() {
			lineNum++
			line := scanner.Text()
			if !isNetsHeader(line) {
				return line, true
			}
		}
		return "", false
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line, ok := nextLine()
		if !ok {
			break
		}

		fields := strings.Fields(line)
		// NetDegree : <k> <netName>
		if len(fields) < 4 || fields[0] != "NetDegree" || fields[1] != ":" {
			return nil, apperrors.New(apperrors.CodeInputMalformed,
				fmt.Sprintf("%s:%d: expected \"NetDegree : <k> <name>\", got %q", path, lineNum, line))
		}
		degree, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInputMalformed, fmt.Sprintf("%s:%d: net degree %q", path, lineNum, fields[2]), err)
		}
		netName := fields[3]

		pins := make([]circuit.Pin, 0, degree)
		for i := 0; i < degree; i++ {
			pinLine, ok := nextLine()
			if !ok {
				return nil, apperrors.New(apperrors.CodeInputMalformed,
					fmt.Sprintf("%s: net %q declares degree %d but ran out of pin lines", path, netName, degree))
			}
			pinFields := strings.Fields(pinLine)
			// <cellName> <dir> : <x> <y>
			if len(pinFields) < 3 || pinFields[2] != ":" {
				return nil, apperrors.New(apperrors.CodeInputMalformed,
					fmt.Sprintf("%s:%d: expected \"<cell> <dir> : <x> <y>\", got %q", path, lineNum, pinLine))
			}
			pins = append(pins, circuit.Pin{
				CellName:  pinFields[0],
				Direction: pinFields[1],
			})
		}

		nets = append(nets, circuit.Net{Name: netName, Pins: pins})
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInputMalformed, fmt.Sprintf("reading nets file %q", path), err)
	}
	return nets, nil
}
