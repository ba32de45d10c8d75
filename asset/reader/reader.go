package reader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/achilleasa/lumen/asset"
	"github.com/achilleasa/lumen/asset/compiler/input"
	"github.com/achilleasa/lumen/types"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read a scene definition from a resource.
	Read(*asset.Resource) (*input.Scene, error)
}

// Read a scene definition from a local file or a remote URL. Wavefront
// object files are loaded with a default material and an automatically
// placed camera; any other file is parsed as a scene description.
func ReadScene(pathToScene string) (*input.Scene, error) {
	res, err := asset.NewResource(pathToScene, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var reader Reader
	if strings.HasSuffix(pathToScene, ".obj") {
		reader = newWavefrontReader()
	} else {
		reader = newTextSceneReader()
	}
	return reader.Read(res)
}

// An error stack that provides additional error information when scene
// files reference other files (obj meshes).
type errContext struct {
	errStack []string
}

// Push a frame to the error stack.
func (e *errContext) pushFrame(msg string) {
	e.errStack = append([]string{msg}, e.errStack...)
}

// Pop a frame from the error stack.
func (e *errContext) popFrame() {
	e.errStack = e.errStack[1:]
}

// Generate an error message that also includes any data in the error stack.
func (e *errContext) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(e.errStack, "\n")),
			"\n",
		)
	} else {
		errMsg = strings.Trim(
			fmt.Sprintf("error: %s\n%s", msg, strings.Join(e.errStack, "\n")),
			"\n",
		)
	}

	return errors.New(errMsg)
}

// Split a "name(args)" entry into its name and argument payload.
func splitEntry(line string) (name, args string, err error) {
	open := strings.IndexByte(line, '(')
	if open == -1 || !strings.HasSuffix(line, ")") {
		return "", "", fmt.Errorf(`entries must use the "name(args)" form; got "%s"`, line)
	}
	return strings.TrimSpace(line[:open]), line[open+1 : len(line)-1], nil
}

// Split a comma separated argument list, ignoring commas nested inside
// parentheses. An empty payload yields an empty list.
func splitArgs(args string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(args[start:i]))
				start = i + 1
			}
		}
	}
	tail := strings.TrimSpace(args[start:])
	if tail != "" || len(out) > 0 {
		out = append(out, tail)
	}
	return out
}

// Strip the outer parentheses from a list entry.
func stripParens(group string) (string, error) {
	group = strings.TrimSpace(group)
	if !strings.HasPrefix(group, "(") || !strings.HasSuffix(group, ")") {
		return "", fmt.Errorf(`expected a parenthesized entry; got "%s"`, group)
	}
	return group[1 : len(group)-1], nil
}

// Parse a space separated vector argument, e.g. "0 1.5 20".
func parseVec3Arg(arg string) (types.Vec3, error) {
	fields := strings.Fields(arg)
	if len(fields) != 3 {
		return types.Vec3{}, fmt.Errorf(`expected a vector with 3 coordinates; got "%s"`, arg)
	}

	var v types.Vec3
	for i, field := range fields {
		coord, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return types.Vec3{}, err
		}
		v[i] = float32(coord)
	}
	return v, nil
}

// Parse a scalar argument.
func parseFloatArg(arg string) (float32, error) {
	val, err := strconv.ParseFloat(strings.TrimSpace(arg), 32)
	if err != nil {
		return 0, err
	}
	return float32(val), nil
}

// Parse an integer argument.
func parseIntArg(arg string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(arg))
}
