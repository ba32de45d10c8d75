package reader

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/lumen/asset"
	"github.com/achilleasa/lumen/asset/compiler/input"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

// Default viewport for object files rendered without a scene file.
const (
	objScreenWidth   = 1024
	objScreenHeight  = 768
	objScreenSamples = 32
	objScreenBounces = 10
	objCameraFOV     = 45.0
)

type wavefrontReader struct {
	errContext

	logger log.Logger

	// List of parsed vertices and normals.
	vertexList []types.Vec3
	normalList []types.Vec3

	// Parsed triangles; material indices are assigned by the caller.
	triangles []input.Triangle
}

// Create a new wavefront object reader.
func newWavefrontReader() *wavefrontReader {
	return &wavefrontReader{
		logger:     log.New("wavefront reader"),
		vertexList: make([]types.Vec3, 0),
		normalList: make([]types.Vec3, 0),
	}
}

// Read an object file as a complete scene. The mesh gets a neutral
// lambertian material, is lit by the default background gradient and is
// framed by placing the camera on the +Z side of its bounding box.
func (r *wavefrontReader) Read(res *asset.Resource) (*input.Scene, error) {
	triangles, err := r.parseMesh(res)
	if err != nil {
		return nil, err
	}

	rawScene := input.NewScene()
	rawScene.AssetRelPath = res
	rawScene.Materials = append(rawScene.Materials, defaultObjMaterial())
	rawScene.Triangles = triangles

	r.frameMesh(rawScene)
	return rawScene, nil
}

// Parse the triangle data from an object resource. Used directly when a
// scene file merges an obj mesh.
func (r *wavefrontReader) parseMesh(res *asset.Resource) ([]input.Triangle, error) {
	r.logger.Noticef(`parsing mesh from "%s"`, res.Path())
	start := time.Now()

	if err := r.parse(res); err != nil {
		return nil, err
	}

	r.logger.Noticef("parsed %d triangles in %d ms", len(r.triangles), time.Since(start).Nanoseconds()/1e6)
	return r.triangles, nil
}

// Parse the wavefront object format. Only v, vn and f statements are
// interpreted; everything else is skipped.
func (r *wavefrontReader) parse(res *asset.Resource) error {
	var lineNum int = 0

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.normalList = append(r.normalList, v)
		case "f":
			if err := r.parseFace(lineTokens); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		}
	}
	return scanner.Err()
}

// Parse a face definition. Each vertex argument uses one of the forms
// vertexIndex, vertexIndex/uvIndex, vertexIndex//normalIndex or
// vertexIndex/uvIndex/normalIndex (uv indices are parsed and skipped).
// Indices start from 1; negative values reference elements from the end
// of the coord lists. Faces with more than 3 vertices are triangulated
// as a fan around the first vertex.
func (r *wavefrontReader) parseFace(lineTokens []string) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}

	var vertices []types.Vec3
	var normals []types.Vec3
	expIndices := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		offset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList))
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices = append(vertices, r.vertexList[offset])

		// Normal coords are the third index; uv coords are skipped
		if expIndices > 2 && vTokens[2] != "" {
			offset, err = selectFaceCoordIndex(vTokens[2], len(r.normalList))
			if err != nil {
				return fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
			normals = append(normals, r.normalList[offset].Normalize())
		}
	}

	hasNormals := len(normals) > 0
	if hasNormals && len(normals) != len(vertices) {
		return fmt.Errorf("face mixes arguments with and without normal indices")
	}

	// Triangulate as a fan around the first vertex
	for i := 1; i+1 < len(vertices); i++ {
		tri := input.Triangle{
			Vertices:   [3]types.Vec3{vertices[0], vertices[i], vertices[i+1]},
			HasNormals: hasNormals,
		}
		if hasNormals {
			tri.Normals = [3]types.Vec3{normals[0], normals[i], normals[i+1]}
		}
		r.triangles = append(r.triangles, tri)
	}
	return nil
}

// Place the screen and camera so the mesh bounding box is visible.
func (r *wavefrontReader) frameMesh(rawScene *input.Scene) {
	min := types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max := types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, tri := range rawScene.Triangles {
		for _, v := range tri.Vertices {
			min = types.MinVec3(min, v)
			max = types.MaxVec3(max, v)
		}
	}

	center := min.Add(max).Mul(0.5)
	radius := max.Sub(min).Len() * 0.5
	if len(rawScene.Triangles) == 0 || radius < 1e-3 {
		center = types.Vec3{}
		radius = 1
	}

	eye := center.Add(types.XYZ(0, radius*0.5, radius*2.5))
	cam := scene.NewLookAtCamera(
		eye, center, types.XYZ(0, 1, 0),
		objCameraFOV, float32(objScreenWidth)/float32(objScreenHeight),
	)

	rawScene.Camera.Eye = cam.Eye
	rawScene.Screen = input.Screen{
		TopLeft:  cam.TopLeft,
		TopEdge:  cam.TopEdge,
		LeftEdge: cam.LeftEdge,
		Width:    objScreenWidth,
		Height:   objScreenHeight,
		Samples:  objScreenSamples,
		Bounces:  objScreenBounces,
	}
}

// Given a 1-based face coord index, calculate the proper offset into
// the coord list. Negative indices reference elements from the end of
// the list.
func selectFaceCoordIndex(indexToken string, coordListLen int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var offset int
	if index < 0 {
		offset = coordListLen + int(index)
	} else {
		offset = int(index - 1)
	}
	if offset < 0 || offset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return offset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
