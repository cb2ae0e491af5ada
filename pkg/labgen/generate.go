package labgen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/newtron-network/astopo/pkg/topology"
	"github.com/newtron-network/astopo/pkg/util"
)

// GenerateAll writes every artifact for the lab name into outputDir,
// creating the directory if needed.
func GenerateAll(t *topology.Topology, name, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := GenerateClabTopology(t, name, outputDir); err != nil {
		return err
	}
	if err := GenerateTopologySpec(t, name, outputDir); err != nil {
		return err
	}
	if err := GenerateConfigDB(t, outputDir); err != nil {
		return err
	}
	util.WithField("dir", outputDir).Infof("wrote lab artifacts for %s", name)
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling JSON for %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
