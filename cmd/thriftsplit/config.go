package main

import (
	"encoding/json"
	"fmt"
	"os"

	"thriftsplit/internal/tcore"
)

// cliConfig is the on-disk JSON shape a split run reads its extraction
// plan from. It is deliberately small: thriftsplit itself treats
// config construction as an external collaborator (spec §1), so this
// schema is CLI scaffolding, not part of the core.
type cliConfig struct {
	RootType         string        `json:"root_type"`
	MinFormatVersion int           `json:"min_format_version"`
	ParseTulipV2     bool          `json:"parse_tulip_v2"`
	Paths            []cliPath     `json:"paths"`
	Clusters         []cliCluster  `json:"clusters"`
}

type cliPath struct {
	Path []string `json:"path"`
	Type string   `json:"type"`
}

type cliCluster struct {
	Paths     [][]string `json:"paths"`
	Successor int        `json:"successor"`
}

func loadCLIConfig(path string) (cliConfig, error) {
	var cfg cliConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func parseType(name string) (tcore.TType, error) {
	switch name {
	case "BOOL":
		return tcore.TBool, nil
	case "BYTE":
		return tcore.TByte, nil
	case "I16":
		return tcore.TI16, nil
	case "I32":
		return tcore.TI32, nil
	case "I64":
		return tcore.TI64, nil
	case "DOUBLE":
		return tcore.TDouble, nil
	case "FLOAT":
		return tcore.TFloat, nil
	case "STRING":
		return tcore.TString, nil
	case "MAP":
		return tcore.TMap, nil
	case "LIST":
		return tcore.TList, nil
	case "SET":
		return tcore.TSet, nil
	case "STRUCT":
		return tcore.TStruct, nil
	default:
		return 0, fmt.Errorf("unknown thrift type %q", name)
	}
}

func parseNodeID(tok string) (tcore.NodeID, error) {
	switch tok {
	case "MAP_KEY":
		return tcore.MapKey, nil
	case "MAP_VALUE":
		return tcore.MapValue, nil
	case "LIST_ELEM":
		return tcore.ListElem, nil
	default:
		var id int32
		if _, err := fmt.Sscanf(tok, "%d", &id); err != nil {
			return 0, fmt.Errorf("invalid path element %q", tok)
		}
		return tcore.NodeID(id), nil
	}
}

func parsePath(toks []string) (tcore.Path, error) {
	path := make(tcore.Path, len(toks))
	for i, t := range toks {
		id, err := parseNodeID(t)
		if err != nil {
			return nil, err
		}
		path[i] = id
	}
	return path, nil
}

// buildEncoderConfig translates the JSON schema into a validated
// EncoderConfig via the same ConfigBuilder the core tests use.
func buildEncoderConfig(cfg cliConfig) (*tcore.EncoderConfig, error) {
	b := tcore.NewConfigBuilder()

	if cfg.RootType != "" {
		rt, err := parseType(cfg.RootType)
		if err != nil {
			return nil, fmt.Errorf("root_type: %w", err)
		}
		b.SetRootType(rt)
	}
	if cfg.MinFormatVersion != 0 {
		b.SetMinFormatVersion(cfg.MinFormatVersion)
	}
	if cfg.ParseTulipV2 {
		b.SetShouldParseTulipV2()
	}

	for _, p := range cfg.Paths {
		path, err := parsePath(p.Path)
		if err != nil {
			return nil, fmt.Errorf("path %v: %w", p.Path, err)
		}
		typ, err := parseType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("path %v: %w", p.Path, err)
		}
		b.AddPath(path, typ)
	}

	for ci, cl := range cfg.Clusters {
		idx := b.AddEmptyCluster(cl.Successor)
		for _, toks := range cl.Paths {
			path, err := parsePath(toks)
			if err != nil {
				return nil, fmt.Errorf("cluster %d: %w", ci, err)
			}
			if err := b.AddPathToCluster(path, idx); err != nil {
				return nil, fmt.Errorf("cluster %d: %w", ci, err)
			}
		}
	}

	return b.Finalize()
}
