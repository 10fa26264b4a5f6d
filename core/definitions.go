package core

// MaterialDefinition describes a material the distribution policy may push.
// A zero weight keeps the material eligible but it never wins a random draw.
type MaterialDefinition struct {
	ID       string  `json:"id" yaml:"id"`
	Item     string  `json:"item" yaml:"item"`
	MinStock int     `json:"min_stock" yaml:"min_stock"`
	Weight   float64 `json:"weight" yaml:"weight"`
}

// MachineTypeDefinition lists, in declaration order, the materials a machine
// type accepts.
type MachineTypeDefinition struct {
	ID                   string   `json:"id" yaml:"id"`
	SupportedMaterialIDs []string `json:"materials" yaml:"materials"`
}

// Recipe transforms an input item into an output item.
type Recipe struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}

// StockTarget is the desired on-hand count of an item. MinReserve, when set
// on the target of an input item, is the floor the scheduler must not draw
// below.
type StockTarget struct {
	Item        string  `json:"item" yaml:"item"`
	TargetCount int     `json:"target" yaml:"target"`
	Weight      float64 `json:"weight" yaml:"weight"`
	MinReserve  int     `json:"min_reserve,omitempty" yaml:"min_reserve,omitempty"`
}

// ChainLink is one stage of a transformation chain sharing the processing
// buffer.
type ChainLink struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}
