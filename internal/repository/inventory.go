package repository

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// InventoryRoom は在庫ファイルに記載される客室です
type InventoryRoom struct {
	Type  string  `yaml:"tipo"`
	Price float64 `yaml:"precio"`
	State string  `yaml:"estado"`
}

// Inventory は客室の初期在庫です
//
//	habitaciones:
//	  - tipo: suite
//	    precio: 250000
//	    estado: disponible
type Inventory struct {
	Rooms []InventoryRoom `yaml:"habitaciones"`
}

// LoadInventory は YAML の在庫ファイルを読み込みます
func LoadInventory(path string) (*Inventory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory file: %w", err)
	}

	var inv Inventory
	if err := yaml.Unmarshal(b, &inv); err != nil {
		return nil, fmt.Errorf("failed to parse inventory file %s: %w", path, err)
	}
	return &inv, nil
}
