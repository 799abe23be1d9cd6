package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultProfile = "default"
)

type Manager interface {
	GetProfiles() []string
	GetProfile(name string) (map[string]any, error)
}

type profileManager struct {
	config *viper.Viper
}

// Empty type to represent the _type_ Manager. Genesis is to support a key in a Context
type Key struct{}

// Global instance of the ProfileManagerKey type
var ProfileManagerKey = Key{}

// GetProfiles returns the top level sections of the config file, sorted.
func (v *profileManager) GetProfiles() []string {
	seen := make(map[string]bool)
	for _, key := range v.config.AllKeys() {
		seen[strings.Split(key, ".")[0]] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (v *profileManager) GetProfile(name string) (map[string]any, error) {
	if name == "" || !v.config.IsSet(name) {
		return nil, fmt.Errorf("profile %q not found", name)
	}
	return v.config.GetStringMap(name), nil
}

func NewManager(config *viper.Viper) Manager {
	return &profileManager{
		config: config,
	}
}
