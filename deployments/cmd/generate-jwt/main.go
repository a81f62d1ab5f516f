package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"bustracker/internal/shared/auth"
	"bustracker/internal/shared/config"
	"bustracker/internal/shared/utils"
)

// Dev helper: mints a token for exercising the /admin and /auth routes
// with curl without going through register/approve.
func main() {
	userID := flag.String("user", utils.NewUUID(), "User ID (UUID)")
	email := flag.String("email", "operator@example.com", "Email address")
	role := flag.String("role", "admin", "Role (passenger|driver|admin)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("failed to load config:", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	token, err := jwtService.GenerateToken(*userID, *email, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating JWT token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User ID: %s\n", *userID)
	fmt.Printf("Email:   %s\n", *email)
	fmt.Printf("Role:    %s\n", *role)
	fmt.Printf("\nAuthorization: Bearer %s\n", token)
	fmt.Printf("\nExample:\n")
	fmt.Printf("curl http://localhost:%d/admin/tracking-status \\\n", cfg.HTTP.Port)
	fmt.Printf("  -H 'Authorization: Bearer %s'\n", token)
}
