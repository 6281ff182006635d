package model

// ManifestVersion is the current manifest format.
const ManifestVersion = 1

// Record is the persisted description of a mutant.
type Record struct {
	ID          int          `yaml:"id"`
	Type        MutationType `yaml:"type"`
	Shape       Shape        `yaml:"shape"`
	Description string       `yaml:"description"`
	File        Path         `yaml:"file"`
	Line        int          `yaml:"line"`
	Column      int          `yaml:"column"`
	EndLine     int          `yaml:"end_line"`
	EndColumn   int          `yaml:"end_column"`
	Original    string       `yaml:"original"`
	Mutated     string       `yaml:"mutated"`
}

// InstrumentedFile maps a source file to its instrumented shadow.
type InstrumentedFile struct {
	Path    Path   `yaml:"path"`
	Shadow  Path   `yaml:"shadow"`
	Hash    string `yaml:"hash"`
	Alias   string `yaml:"alias"`
	Mutants int    `yaml:"mutants"`
}

// Manifest describes one injection session.
type Manifest struct {
	Version       int                `yaml:"version"`
	Session       string             `yaml:"session"`
	Module        string             `yaml:"module"`
	ModuleDir     Path               `yaml:"module_dir"`
	RuntimeImport string             `yaml:"runtime_import"`
	EnvVar        string             `yaml:"env_var"`
	Overlay       Path               `yaml:"overlay"`
	Files         []InstrumentedFile `yaml:"files"`
	Mutants       []Record           `yaml:"mutants"`
}

// Record returns the record with the given id.
func (m *Manifest) Record(id int) (Record, bool) {
	for _, r := range m.Mutants {
		if r.ID == id {
			return r, true
		}
	}

	return Record{}, false
}

// File returns the instrumented file entry for path.
func (m *Manifest) File(path Path) (InstrumentedFile, bool) {
	for _, f := range m.Files {
		if f.Path == path {
			return f, true
		}
	}

	return InstrumentedFile{}, false
}

// Overlay is the file replacement map understood by "go build -overlay".
type Overlay struct {
	Replace map[string]string `json:"Replace"`
}
