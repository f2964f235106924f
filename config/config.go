package config

type Config struct {
	Server   Server   `yaml:"server" validate:"required"`
	Database Database `yaml:"storage" validate:"required"`
	Blob     Blob     `yaml:"blob" validate:"required"`
	Payments Payments `yaml:"payments" validate:"required"`
	Auth     Auth     `yaml:"auth" validate:"required"`
}

type Server struct {
	Port string `yaml:"port" comment:"Server Port" validate:"required"`
	Env  string `yaml:"env" comment:"Server Environment" validate:"required"`
}

type Database struct {
	DatabaseURL string `yaml:"database_url" comment:"Database URL" validate:"required"`
	RedisURL    string `yaml:"redis_url" comment:"Redis URL" validate:"required"`
}

type Blob struct {
	Endpoint     string `yaml:"endpoint" comment:"Blob storage endpoint" validate:"required,httporhttps"`
	Bucket       string `yaml:"bucket" comment:"Bucket name" validate:"required,notblank"`
	AccessKey    string `yaml:"access_key" comment:"Access key" validate:"required"`
	SecretKey    string `yaml:"secret_key" comment:"Secret key" validate:"required"`
	PublicPrefix string `yaml:"public_prefix" comment:"Public URL prefix for uploaded objects" validate:"required,httporhttps"`
}

type Payments struct {
	BaseURL   string `yaml:"base_url" comment:"Payment gateway base URL" validate:"required,https"`
	SecretKey string `yaml:"secret_key" comment:"Payment gateway secret key" validate:"required"`
}

type Auth struct {
	// Header carrying the authenticated caller's user id, filled in by the
	// identity collaborator fronting this API.
	IdentityHeader string `yaml:"identity_header" comment:"Header carrying the authenticated user id" validate:"required,notblank,nospaces"`
}
