// Package state performs one-time process setup: config, database, redis
// and logger. Domain stores never reach into this package; main wires the
// handles from here into their constructors.
package state

import (
	"context"
	"os"

	"camposocial/config"
	"camposocial/types"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/infinitybotlist/eureka/genconfig"
	"github.com/infinitybotlist/eureka/snippets"
	"github.com/redis/go-redis/v9"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	Pool      *gorm.DB
	Redis     *redis.Client
	Logger    *zap.Logger
	Context   = context.Background()
	Validator = validator.New()
	Config    *config.Config
)

func Setup() {
	Validator.RegisterValidation("notblank", validators.NotBlank)
	Validator.RegisterValidation("nospaces", snippets.ValidatorNoSpaces)
	Validator.RegisterValidation("https", snippets.ValidatorIsHttps)
	Validator.RegisterValidation("httporhttps", snippets.ValidatorIsHttpOrHttps)

	genconfig.GenConfig(config.Config{})

	cfg, err := os.ReadFile("config.yaml")
	if err != nil {
		panic("Failed to read config file: " + err.Error())
	}

	err = yaml.Unmarshal(cfg, &Config)
	if err != nil {
		panic("Failed to parse config file: " + err.Error())
	}

	err = Validator.Struct(Config)
	if err != nil {
		panic("config validation error: " + err.Error())
	}

	// Initalize Gorm connection
	Pool, err = gorm.Open(postgres.Open(Config.Database.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("Failed to connect to database: " + err.Error())
	}

	err = Migrate(Pool)
	if err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// Initialize Redis connection
	rOptions, err := redis.ParseURL(Config.Database.RedisURL)
	if err != nil {
		panic("Failed to parse Redis URL: " + err.Error())
	}

	Redis = redis.NewClient(rOptions)
	if err := Redis.Ping(Context).Err(); err != nil {
		panic("Failed to connect to Redis: " + err.Error())
	}

	// Initialize Logger
	Logger = snippets.CreateZap()
}

// Migrate runs the schema migrations for every model. Tests reuse this
// against sqlite.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&types.User{},
		&types.Friendship{},
		&types.Yap{},
		&types.YapMedia{},
		&types.Reply{},
		&types.ReplyMedia{},
		&types.Like{},
		&types.Hashtag{},
		&types.YapHashtag{},
		&types.UserHashtag{},
		&types.Notification{},
		&types.Message{},
		&types.ChatMedia{},
		&types.Reaction{},
		&types.Event{},
		&types.EventComment{},
		&types.Seller{},
		&types.Product{},
		&types.ProductImage{},
		&types.ProductVariation{},
		&types.Review{},
		&types.Wishlist{},
		&types.Cart{},
		&types.CartItem{},
		&types.Order{},
		&types.OrderItem{},
	)

	if err != nil {
		return err
	}

	// At most one friendship edge per unordered pair, regardless of which
	// side initiated. AutoMigrate cannot express an expression index, so
	// it is created here; concurrent opposite-direction inserts collide on
	// it instead of both committing.
	pairIndex := "CREATE UNIQUE INDEX IF NOT EXISTS uq_friendship_pair ON friendships (MIN(user_id, friend_id), MAX(user_id, friend_id))"

	if db.Dialector.Name() == "postgres" {
		pairIndex = "CREATE UNIQUE INDEX IF NOT EXISTS uq_friendship_pair ON friendships (LEAST(user_id, friend_id), GREATEST(user_id, friend_id))"
	}

	return db.Exec(pairIndex).Error
}
