package types

// ProjectLayout is the directory skeleton of a Java project
type ProjectLayout struct {
	Base             string
	SrcMainJava      string
	SrcMainResources string
	PackageName      string
	Dirs             map[string]string // role subdirectories, e.g. "controller", "static"
}

// Structure returns the layout as the flat path map reported in a Manifest
func (l ProjectLayout) Structure() map[string]string {
	structure := make(map[string]string, len(l.Dirs)+4)
	for role, dir := range l.Dirs {
		structure[role] = dir
	}
	structure["base"] = l.Base
	structure["src_main_java"] = l.SrcMainJava
	structure["src_main_resources"] = l.SrcMainResources
	structure["package_name"] = l.PackageName
	return structure
}

// Manifest lists what a materialization wrote
type Manifest struct {
	TotalFiles int               `json:"total_files" yaml:"total_files"`
	Files      []string          `json:"files" yaml:"files"`
	Structure  map[string]string `json:"structure" yaml:"structure"`
}

// FileSet maps a role tag (pas, dfm, dpr, dpk, inc, dproj) to file paths
type FileSet map[string][]string

// Count returns the number of files across all roles
func (fs FileSet) Count() int {
	total := 0
	for _, files := range fs {
		total += len(files)
	}
	return total
}

// Provider reads legacy source files
type Provider interface {
	// ReadFile reads file content as bytes
	ReadFile(path string) ([]byte, error)

	// Exists checks if a file or directory exists
	Exists(path string) (bool, error)

	// GetBasePath returns the base path for this provider
	GetBasePath() string
}
