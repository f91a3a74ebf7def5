package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TileDef holds the static properties of one tile kind as authored in the
// tile configuration file.
type TileDef struct {
	Letter      string   `yaml:"letter"`
	Name        string   `yaml:"name"`
	Solid       bool     `yaml:"solid"`
	Attenuation float64  `yaml:"attenuation"` // 0 means plain open air
	Floor       bool     `yaml:"floor"`
	Outdoor     bool     `yaml:"outdoor"`
	Walkable    bool     `yaml:"walkable"`
	CutNE       bool     `yaml:"cut_ne"` // corner toward (x+1, y-1) is occupied
	CutNW       bool     `yaml:"cut_nw"` // corner toward (x-1, y-1) is occupied
	Light       float64  `yaml:"light"`  // emitted intensity, 0 for none
	Beam        *BeamDef `yaml:"beam"`
}

// BeamDef restricts a tile's emission to a directional arc.
type BeamDef struct {
	BearingDeg   float64 `yaml:"bearing_deg"`
	HalfAngleDeg float64 `yaml:"half_angle_deg"`
}

type tileFile struct {
	Tiles map[string]TileDef `yaml:"tiles"`
}

// TileSet resolves tile keys and map letters to tile definitions.
type TileSet struct {
	defs        map[string]*TileDef
	letterToKey map[string]string
}

// LoadTileSet loads tile definitions from a YAML file.
func LoadTileSet(filename string) (*TileSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read tile config file: %w", err)
	}

	var tf tileFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse tile config: %w", err)
	}
	return NewTileSet(tf.Tiles)
}

// NewTileSet builds a tile set from already-parsed definitions (tests).
func NewTileSet(defs map[string]TileDef) (*TileSet, error) {
	ts := &TileSet{
		defs:        make(map[string]*TileDef, len(defs)),
		letterToKey: make(map[string]string, len(defs)),
	}
	for key, def := range defs {
		defCopy := def
		ts.defs[key] = &defCopy
		if def.Letter == "" {
			continue
		}
		if prev, dup := ts.letterToKey[def.Letter]; dup {
			return nil, fmt.Errorf("tiles %q and %q share letter %q", prev, key, def.Letter)
		}
		ts.letterToKey[def.Letter] = key
	}
	return ts, nil
}

// Get returns the definition for a tile key, or nil when unknown.
func (ts *TileSet) Get(key string) *TileDef {
	return ts.defs[key]
}

// ByLetter resolves a map letter to its tile key and definition.
func (ts *TileSet) ByLetter(letter string) (string, *TileDef, bool) {
	key, ok := ts.letterToKey[letter]
	if !ok {
		return "", nil, false
	}
	return key, ts.defs[key], true
}

// Keys returns all tile keys in the set.
func (ts *TileSet) Keys() []string {
	keys := make([]string, 0, len(ts.defs))
	for key := range ts.defs {
		keys = append(keys, key)
	}
	return keys
}
