// Command admintoken mints a bearer token for the /api/admin routes using
// the same JWT_SECRET as the API server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/healthref-api/internal/config"
	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/harentsoaR/healthref-api/internal/utils"
)

func main() {
	id := flag.String("id", "", "admin id (hex ObjectID); a new one is generated when empty")
	ttl := flag.Duration("ttl", 0, "token lifetime; defaults to JWT_TTL")
	flag.Parse()

	if err := run(*id, *ttl); err != nil {
		fmt.Fprintln(os.Stderr, "admintoken:", err)
		os.Exit(1)
	}
}

func run(hex string, ttl time.Duration) error {
	_ = godotenv.Load()

	cfg, err := config.Parse(nil)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = cfg.JWTTTL
	}

	adminID := primitive.NewObjectID()
	if hex != "" {
		if adminID, err = primitive.ObjectIDFromHex(hex); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
	}

	tm, err := utils.NewTokenManager(cfg.JWTSecret, ttl)
	if err != nil {
		return err
	}
	token, err := tm.Generate(adminID.Hex(), models.RoleAdmin)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
