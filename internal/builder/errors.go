package builder

import "fmt"

// Stage names the materialization step that failed
type Stage string

const (
	StageNormalize     Stage = "normalize"
	StagePackage       Stage = "package"
	StageImports       Stage = "imports"
	StageDescriptor    Stage = "descriptor"
	StageConfig        Stage = "config"
	StageWrite         Stage = "write"
	StageScaffoldFiles Stage = "scaffold-files"
)

// BuildError aborts a materialization. Files written before the failure are
// left on disk.
type BuildError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *BuildError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("java project build failed at %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("java project build failed at %s (%s): %v", e.Stage, e.Path, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, path string, err error) *BuildError {
	return &BuildError{Path: path, Stage: stage, Err: err}
}
