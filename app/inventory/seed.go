package inventory

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/newkimjiwon/freshbox/app/database"
)

// DefaultCategories ship with the application and back the seed when no
// categories file is present. Seeded categories are never custom.
var DefaultCategories = []database.Category{
	{Name: "Fruit"},
	{Name: "Vegetables"},
	{Name: "Meat"},
	{Name: "Dairy"},
	{Name: "Beverages"},
	{Name: "Other"},
}

type categorySeedFile struct {
	Categories []struct {
		Name string `yaml:"name"`
	} `yaml:"categories"`
}

// LoadCategorySeed reads the category seed from path. A missing file is not
// an error; the built-in defaults are returned instead.
func LoadCategorySeed(path string) ([]database.Category, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultCategories, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read category seed: %w", err)
	}

	var file categorySeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse category seed: %w", err)
	}

	seed := make([]database.Category, 0, len(file.Categories))
	for _, c := range file.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		seed = append(seed, database.Category{Name: name})
	}
	if len(seed) == 0 {
		return DefaultCategories, nil
	}
	return seed, nil
}
