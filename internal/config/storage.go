package config

// StorageDriver selects the backend for persisted session state
type StorageDriver string

const (
	StorageFile   StorageDriver = "file"
	StorageSQLite StorageDriver = "sqlite"
	StorageRedis  StorageDriver = "redis"
	StorageMemory StorageDriver = "memory" // Nothing survives a restart
)

// StorageConfig holds backend-specific settings
type StorageConfig struct {
	Driver        StorageDriver `yaml:"driver"`
	Path          string        `yaml:"path,omitempty"` // file and sqlite
	RedisAddr     string        `yaml:"redis_addr,omitempty"`
	RedisPassword string        `yaml:"redis_password,omitempty"`
	RedisDB       int           `yaml:"redis_db,omitempty"`
	Prefix        string        `yaml:"prefix,omitempty"` // redis key prefix
}

// AvailableDrivers returns all storage drivers
func AvailableDrivers() []DriverInfo {
	return []DriverInfo{
		{
			ID:          StorageFile,
			Name:        "File",
			Description: "JSON file in the config directory",
		},
		{
			ID:          StorageSQLite,
			Name:        "SQLite",
			Description: "Single-table SQLite database",
		},
		{
			ID:          StorageRedis,
			Name:        "Redis",
			Description: "Shared Redis instance, keys under a prefix",
		},
		{
			ID:          StorageMemory,
			Name:        "Memory",
			Description: "In-process only, session is lost on exit",
		},
	}
}

// DriverInfo describes a storage driver option
type DriverInfo struct {
	ID          StorageDriver
	Name        string
	Description string
}

// IsValid reports whether d is one of the known drivers
func (d StorageDriver) IsValid() bool {
	for _, info := range AvailableDrivers() {
		if info.ID == d {
			return true
		}
	}
	return false
}
