package renderer

import "errors"

var (
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrCameraNotDefined = errors.New("renderer: no camera defined")
	ErrFilmNotDefined   = errors.New("renderer: no film attached")
	ErrFilmMismatch     = errors.New("renderer: film dimensions do not match the scene screen")
	ErrAlreadyRendering = errors.New("renderer: a render is already in progress")
)
