package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config хранит все настройки сервера и симуляции.
// Поля соответствуют config.yaml; отсутствующие поля получают дефолты.
type Config struct {
	// Сеть
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Симуляция
	TickRate    int     `yaml:"tick_rate"`    // тиков в секунду
	WorldWidth  float64 `yaml:"world_width"`  // размеры мира в игровых единицах
	WorldHeight float64 `yaml:"world_height"`
	CellSize    float64 `yaml:"cell_size"` // размер ячейки пространственной сетки

	// Клиентская часть (передается ботам/фронтенду как есть)
	InterpolationRate   float64 `yaml:"interpolation_rate"`
	InputPollIntervalMs int     `yaml:"input_poll_interval_ms"`

	// Персистентность
	DataDir string `yaml:"data_dir"`
}

// Default возвращает конфиг со значениями по умолчанию.
func Default() Config {
	return Config{
		Host:                "0.0.0.0",
		Port:                5000,
		TickRate:            10,
		WorldWidth:          1000,
		WorldHeight:         1000,
		CellSize:            32,
		InterpolationRate:   10,
		InputPollIntervalMs: 50,
		DataDir:             "data",
	}
}

// Load читает конфиг из YAML-файла.
// Отсутствующий файл - не ошибка: возвращаются дефолты (прототип должен
// запускаться "из коробки"). Битый файл - ошибка, сервер не стартует.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate проверяет, что числовые параметры не ломают симуляцию.
func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %d", c.TickRate)
	}
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		return fmt.Errorf("world dimensions must be positive, got %.0fx%.0f", c.WorldWidth, c.WorldHeight)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("cell_size must be positive, got %f", c.CellSize)
	}
	if c.InterpolationRate <= 0 {
		return fmt.Errorf("interpolation_rate must be positive, got %f", c.InterpolationRate)
	}
	return nil
}

// TickInterval возвращает длительность одного тика в секундах.
func (c Config) TickInterval() float64 {
	return 1.0 / float64(c.TickRate)
}
