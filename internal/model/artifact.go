package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadArtifacts reads the serialized ensemble and its canonical ordered column
// list. Both files are required; a missing one is ErrModelNotFound.
func LoadArtifacts(modelPath, columnsPath string) (*Ensemble, []string, error) {
	modelBytes, err := os.ReadFile(modelPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: model file not found: %s", ErrModelNotFound, modelPath)
		}
		return nil, nil, fmt.Errorf("read model file %s: %w", modelPath, err)
	}

	colBytes, err := os.ReadFile(columnsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: model columns file not found: %s", ErrModelNotFound, columnsPath)
		}
		return nil, nil, fmt.Errorf("read model columns file %s: %w", columnsPath, err)
	}

	var ens Ensemble
	if err := json.Unmarshal(modelBytes, &ens); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}

	var cols []string
	if err := json.Unmarshal(colBytes, &cols); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("%w: empty model column list", ErrBadArtifact)
	}

	if err := ens.init(len(cols)); err != nil {
		return nil, nil, err
	}
	return &ens, cols, nil
}
