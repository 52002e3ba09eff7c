package playbook

import (
	"embed"
	"sort"
	"strings"

	"github.com/tyemirov/spx/internal/playbook"
)

//go:embed presets/*.yaml
var embeddedPlaybookPresets embed.FS

// PresetMetadata describes an embedded playbook.
type PresetMetadata struct {
	Name        string
	Description string
}

// PresetCatalog loads embedded playbook presets.
type PresetCatalog interface {
	List() []PresetMetadata
	Load(name string) (playbook.Configuration, bool, error)
}

type presetDefinition struct {
	Name        string
	Description string
	FileName    string
}

var embeddedPresetDefinitions = []presetDefinition{
	{
		Name:        "fetch-metadata",
		Description: "List a remote folder, fetch one file's metadata, and write it to meta.json.",
		FileName:    "presets/fetch-metadata.yaml",
	},
}

type embeddedPresetCatalog struct {
	files       embed.FS
	definitions []presetDefinition
}

// NewEmbeddedPresetCatalog constructs a PresetCatalog backed by embedded YAML definitions.
func NewEmbeddedPresetCatalog() PresetCatalog {
	return &embeddedPresetCatalog{
		files:       embeddedPlaybookPresets,
		definitions: embeddedPresetDefinitions,
	}
}

func (catalog *embeddedPresetCatalog) List() []PresetMetadata {
	if catalog == nil || len(catalog.definitions) == 0 {
		return nil
	}

	metadata := make([]PresetMetadata, 0, len(catalog.definitions))
	for index := range catalog.definitions {
		definition := catalog.definitions[index]
		metadata = append(metadata, PresetMetadata{
			Name:        definition.Name,
			Description: definition.Description,
		})
	}

	sort.Slice(metadata, func(firstIndex int, secondIndex int) bool {
		return metadata[firstIndex].Name < metadata[secondIndex].Name
	})

	return metadata
}

func (catalog *embeddedPresetCatalog) Load(name string) (playbook.Configuration, bool, error) {
	if catalog == nil {
		return playbook.Configuration{}, false, nil
	}

	for index := range catalog.definitions {
		definition := catalog.definitions[index]
		if !strings.EqualFold(name, definition.Name) {
			continue
		}

		content, readError := catalog.files.ReadFile(definition.FileName)
		if readError != nil {
			return playbook.Configuration{}, true, readError
		}

		configuration, parseError := playbook.ParseConfiguration(content)
		if parseError != nil {
			return playbook.Configuration{}, true, parseError
		}

		return configuration, true, nil
	}

	return playbook.Configuration{}, false, nil
}
