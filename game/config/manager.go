package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/mupol-patrol/game/engine"
	"github.com/wricardo/mupol-patrol/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigName is the preset used when no config is requested
const DefaultConfigName = "classic"

// Manager handles parameter preset loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.Params
	configs       map[string]*engine.Params
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.Params),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a preset by name. Fields missing from the file keep
// their built-in defaults.
func (m *Manager) LoadConfig(name string) (*engine.Params, error) {
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	// Check cache first
	if params, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return params, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if params, exists := m.configs[name]; exists {
		return params, nil
	}

	if strings.ContainsAny(name, `/\`) || name == "" || name == ".." {
		return nil, ErrConfigNotFound
	}

	data, err := os.ReadFile(filepath.Join(m.configDir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	params, err := engine.ParseParams(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[name] = params
	return params, nil
}

// ListConfigs returns information about all available presets
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")

		params, err := m.LoadConfig(name)
		if err != nil {
			// Skip invalid presets
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:          entry.Name(),
			ConfigID:          name, // This is the identifier to use for session creation
			Name:              params.Name,
			Description:       params.Description,
			InitialEnergy:     params.InitialEnergy,
			InitialSpeed:      params.InitialSpeed,
			MaxSpeed:          params.MaxSpeed,
			ObstacleSpawnRate: params.ObstacleSpawnRate,
			EnergySpawnRate:   params.EnergySpawnRate,
		})
	}

	return configs, nil
}

// GetDefault returns the default preset
func (m *Manager) GetDefault() *engine.Params {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default preset by name
func (m *Manager) SetDefault(name string) error {
	params, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = params
	return nil
}

// RefreshCache drops cached presets and reloads the default from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.Params)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig picks classic.json, else the first valid preset, else
// the built-in parameters
func (m *Manager) loadDefaultConfig() error {
	params, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			m.setDefault(engine.DefaultParams())
			return nil
		}

		params, err = m.LoadConfig(configs[0].ConfigID)
		if err != nil {
			m.setDefault(engine.DefaultParams())
			return nil
		}
	}

	m.setDefault(params)
	return nil
}

func (m *Manager) setDefault(params *engine.Params) {
	m.mu.Lock()
	m.defaultConfig = params
	m.mu.Unlock()
}

// SaveConfig validates and writes a preset to disk
func (m *Manager) SaveConfig(name string, params *engine.Params) error {
	if err := engine.ValidateParams(params); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return fmt.Errorf("%w: invalid preset name %q", ErrInvalidConfig, name)
	}

	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, name+".json")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = params
	m.mu.Unlock()

	return nil
}
