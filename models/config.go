package models

// Config holds the server configuration loaded from config.json.
type Config struct {
	Port         string   `json:"port"`
	DataDir      string   `json:"data_dir"`
	JWTKey       string   `json:"jwt_key"`
	AllowOrigins []string `json:"allow_origins"`

	// Persistence selects the snapshot sink: "file" (default) or "postgres".
	Persistence string `json:"persistence"`
	DBHost      string `json:"db_host"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBName      string `json:"db_name"`
	DBSSLMode   string `json:"db_sslmode"`

	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
}
