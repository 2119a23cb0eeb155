package resources

import (
	"embed"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
)

const (
	iconDir = "icon/"
	dataDir = "data/"

	ActiveIcon = "breathpacer_active.svg"
	IdleIcon   = "breathpacer_idle.svg"
)

//go:embed icon/*.svg
var iconFS embed.FS

//go:embed data/*.yaml
var dataFS embed.FS

var iconCache sync.Map

// Icon returns a Fyne resource for the given icon file.
func Icon(fileName string) (fyne.Resource, error) {
	return loadResource(iconFS, iconDir+fileName, &iconCache)
}

// MustIcon returns a Fyne resource or panics on error.
func MustIcon(fileName string) fyne.Resource {
	resource, err := Icon(fileName)
	if err != nil {
		panic(err)
	}
	return resource
}

// ToneProfiles returns the built-in tone profile definitions.
func ToneProfiles() []byte {
	return mustData("tones.yaml")
}

// Presets returns the built-in breathing presets.
func Presets() []byte {
	return mustData("presets.yaml")
}

func mustData(fileName string) []byte {
	data, err := dataFS.ReadFile(dataDir + fileName)
	if err != nil {
		panic(fmt.Errorf("load data %s: %w", fileName, err))
	}
	return data
}

func loadResource(fs embed.FS, path string, cache *sync.Map) (fyne.Resource, error) {
	if cached, ok := cache.Load(path); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load resource %s: %w", path, err)
	}

	resource := fyne.NewStaticResource(path, data)
	cache.Store(path, resource)
	return resource, nil
}
