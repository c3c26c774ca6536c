package postgres

type Config struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	DBName   string `yaml:"database_name" env:"POSTGRES_DB" env-default:"notafacil"`
	User     string `yaml:"username" env:"POSTGRES_USER"`
	Pass     string `yaml:"password" env:"POSTGRES_PASSWORD"`
	MaxConns int    `yaml:"max_connections" env-default:"10"`
}
